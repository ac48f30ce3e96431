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

package msgs

import (
	"fmt"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

const keyproxyPrefix = "KP01"

var registered = false
var ffe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	if !registered {
		i18n.RegisterPrefix(keyproxyPrefix, "Keystore Proxy")
		registered = true
	}
	if !strings.HasPrefix(key, keyproxyPrefix) {
		panic(fmt.Errorf("must have prefix '%s': %s", keyproxyPrefix, key))
	}
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (

	// Proxy / receiver runtime KP0100XX
	MsgProxyQueueFull             = ffe("KP010000", "Keystore request queue is full (capacity=%d) - %s request rejected", 429)
	MsgProxyClosed                = ffe("KP010001", "Keystore proxy is closed - %s request rejected", 503)
	MsgResponseDisconnected       = ffe("KP010002", "Response channel for request %s was disconnected before a response was delivered")
	MsgResponseWaitCancelled      = ffe("KP010003", "Wait for response to request %s cancelled after %s")
	MsgStoreOperationPanicked     = ffe("KP010004", "Keystore %s operation failed unexpectedly: %v", 500)
	MsgUnexpectedResponseType     = ffe("KP010005", "Unexpected response type %T for %s request")
	MsgUnknownOperation           = ffe("KP010006", "Unknown keystore operation %T")
	MsgExtensionAlreadyRegistered = ffe("KP010007", "An extension of type %s is already registered")
	MsgExtensionNotRegistered     = ffe("KP010008", "No extension of type %s is registered")

	// Key model KP0101XX
	MsgKeyTypeIDInvalid    = ffe("KP010100", "Key type identifier must be exactly 4 characters: '%s'", 400)
	MsgCryptoTypeIDInvalid = ffe("KP010101", "Crypto type identifier must be exactly 4 characters: '%s'", 400)
	MsgPublicKeyRefInvalid = ffe("KP010102", "Public key reference must be in the format <keyType>:<hexPublicKey>: '%s'", 400)
	MsgInvalidHex          = ffe("KP010103", "Invalid hex value '%s'", 400)

	// Signing errors KP0102XX
	MsgSigningKeyNotSupported = ffe("KP010200", "Crypto type '%s' is not supported by this keystore", 400)
	MsgSigningPairNotFound    = ffe("KP010201", "No key of type '%s' found for public key %s", 404)
	MsgSigningValidationError = ffe("KP010202", "Stored secret for key type '%s' does not derive public key %s for crypto type '%s'", 409)
	MsgSigningUnavailable     = ffe("KP010203", "Keystore is unavailable: %s", 503)
	MsgSigningFailed          = ffe("KP010204", "Signing with crypto type '%s' failed")

	// Insert errors KP0103XX
	MsgInsertInvalidSecretURI  = ffe("KP010300", "Secret URI for key type '%s' is invalid", 400)
	MsgInsertPublicKeyMismatch = ffe("KP010301", "Secret URI for key type '%s' does not derive public key %s for any supported crypto type", 400)
	MsgInsertStorageFailed     = ffe("KP010302", "Failed to persist key of type '%s'", 500)

	// Secret URI KP0104XX
	MsgSecretURIEmpty           = ffe("KP010400", "Secret URI is empty and no development phrase is configured", 400)
	MsgSecretURIInvalidPhrase   = ffe("KP010401", "Secret phrase is neither a valid BIP-39 mnemonic nor a 32/64 byte hex seed", 400)
	MsgSecretURIInvalidJunction = ffe("KP010402", "Invalid derivation junction '%s' in secret URI", 400)
	MsgSecretURIDerivationFail  = ffe("KP010403", "Key derivation failed at junction '%s'", 400)

	// Keystores KP0105XX
	MsgKeystoreTypeUnsupported = ffe("KP010500", "Unsupported key store type: '%s'", 400)
	MsgKeystoreBadPath         = ffe("KP010501", "Key store path '%s' does not exist or is not a directory", 500)
	MsgKeystoreFSError         = ffe("KP010502", "Filesystem error in key store")
	MsgKeystoreBadKeyFile      = ffe("KP010503", "Failed to read key file '%s'")
	MsgKeystoreBadPassFile     = ffe("KP010504", "Failed to read password file '%s'")

	// Config KP0106XX
	MsgConfigFileMissing    = ffe("KP010600", "Config file not found at path: %s")
	MsgConfigFileReadError  = ffe("KP010601", "Failed to read config file %s with error: %s")
	MsgConfigFileParseError = ffe("KP010602", "Failed to parse config file: %s")

	// CLI KP0107XX
	MsgCLIMissingFlag     = ffe("KP010700", "Missing required flag --%s")
	MsgCLIBenchSignFailed = ffe("KP010701", "Benchmark sign request %d failed: %s")

	// Metrics server KP0108XX
	MsgMetricsServerStartFailed  = ffe("KP010800", "Failed to start metrics server on %s", 500)
	MsgMetricsRegistrationFailed = ffe("KP010801", "Failed to register keystore proxy metrics", 500)
)
