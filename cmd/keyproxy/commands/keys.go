/*
 * Copyright © 2025 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package commands

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore/keystores"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore/signers"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore/suri"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/spf13/cobra"
)

func requiredFlag(ctx context.Context, cmd *cobra.Command, name string) (string, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return "", i18n.NewError(ctx, msgs.MsgCLIMissingFlag, name)
	}
	return v, nil
}

func keyFlags(cmd *cobra.Command) {
	cmd.Flags().String("key-type", "", "4 character key type, for example aura")
	cmd.Flags().String("crypto", keystore.CryptoTypeECDSA.String(), "crypto type: ecds or ed25")
}

func parseKeyFlags(ctx context.Context, cmd *cobra.Command) (keyType keystore.KeyTypeID, cryptoType keystore.CryptoTypeID, err error) {
	kt, err := requiredFlag(ctx, cmd, "key-type")
	if err == nil {
		keyType, err = keystore.ParseKeyTypeID(ctx, kt)
	}
	if err == nil {
		ct, _ := cmd.Flags().GetString("crypto")
		cryptoType, err = keystore.ParseCryptoTypeID(ctx, ct)
	}
	return keyType, cryptoType, err
}

func publicCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "public",
		Short: "Print the public key a secret URI derives",
		RunE: func(cmd *cobra.Command, args []string) error {
			secretURI, err := requiredFlag(a.ctx, cmd, "suri")
			if err != nil {
				return err
			}
			ct, _ := cmd.Flags().GetString("crypto")
			cryptoType, err := keystore.ParseCryptoTypeID(a.ctx, ct)
			if err != nil {
				return err
			}
			public, err := keystores.PublicKeyFor(a.ctx, cryptoType, secretURI, a.devPhrase())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "public:  0x%s\n", hex.EncodeToString(public))
			if kt, _ := cmd.Flags().GetString("key-type"); kt != "" {
				keyType, err := keystore.ParseKeyTypeID(a.ctx, kt)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "ref:     %s\n", keystore.PublicKeyRef{PublicKey: public, KeyType: keyType})
			}
			if cryptoType == keystore.CryptoTypeECDSA {
				secret, err := suri.DeriveSecret(a.ctx, secretURI, a.devPhrase())
				if err != nil {
					return err
				}
				address, err := signers.EthAddress(a.ctx, secret)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "address: %s\n", address)
			}
			return nil
		},
	}
	keyFlags(cmd)
	cmd.Flags().String("suri", "", "secret URI, for example //Alice")
	return cmd
}

func insertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Insert the key a secret URI derives",
		RunE: func(cmd *cobra.Command, args []string) error {
			keyType, cryptoType, err := parseKeyFlags(a.ctx, cmd)
			if err != nil {
				return err
			}
			secretURI, err := requiredFlag(a.ctx, cmd, "suri")
			if err != nil {
				return err
			}
			public, err := keystores.PublicKeyFor(a.ctx, cryptoType, secretURI, a.devPhrase())
			if err != nil {
				return err
			}
			proxy, err := a.proxy()
			if err != nil {
				return err
			}
			if err := proxy.Insert(a.ctx, keyType, secretURI, public); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), keystore.PublicKeyRef{PublicKey: public, KeyType: keyType})
			return nil
		},
	}
	keyFlags(cmd)
	cmd.Flags().String("suri", "", "secret URI, for example //Alice")
	return cmd
}

func signCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message with a stored key",
		RunE: func(cmd *cobra.Command, args []string) error {
			keyType, cryptoType, err := parseKeyFlags(a.ctx, cmd)
			if err != nil {
				return err
			}
			publicHex, err := requiredFlag(a.ctx, cmd, "public")
			if err != nil {
				return err
			}
			public, err := keystore.DecodeHex(a.ctx, publicHex)
			if err != nil {
				return err
			}
			message, err := parseMessage(a.ctx, cmd)
			if err != nil {
				return err
			}
			proxy, err := a.proxy()
			if err != nil {
				return err
			}
			sig, err := proxy.Sign(a.ctx, keyType, keystore.CryptoTypePublicPair{CryptoType: cryptoType, PublicKey: public}, message)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "0x%s\n", hex.EncodeToString(sig))
			return nil
		},
	}
	keyFlags(cmd)
	cmd.Flags().String("public", "", "hex public key")
	cmd.Flags().String("message", "", "message text, or 0x prefixed hex bytes")
	return cmd
}

func parseMessage(ctx context.Context, cmd *cobra.Command) ([]byte, error) {
	message, _ := cmd.Flags().GetString("message")
	if strings.HasPrefix(message, "0x") {
		return keystore.DecodeHex(ctx, message)
	}
	return []byte(message), nil
}

func hasKeysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "has-keys <keyType>:<hexPublic>...",
		Short: "Check whether every listed key is in the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := make([]keystore.PublicKeyRef, len(args))
			for i, arg := range args {
				ref, err := keystore.ParsePublicKeyRef(a.ctx, arg)
				if err != nil {
					return err
				}
				refs[i] = ref
			}
			proxy, err := a.proxy()
			if err != nil {
				return err
			}
			found, err := proxy.CheckKeys(a.ctx, refs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), found)
			return nil
		},
	}
}
