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

package keyproxy

import (
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore"
)

type Method string

const (
	MethodSignWith      Method = "SignWith"
	MethodHasKeys       Method = "HasKeys"
	MethodInsertUnknown Method = "InsertUnknown"
)

// Operation is one of SignWith, HasKeys or InsertUnknown, passed by value
type Operation interface {
	Method() Method
}

// SignWith requests a signature over Message with the key of type KeyType identified by Key
type SignWith struct {
	KeyType keystore.KeyTypeID
	Key     keystore.CryptoTypePublicPair
	Message []byte
}

// HasKeys asks whether the store holds every one of Keys
type HasKeys struct {
	Keys []keystore.PublicKeyRef
}

// InsertUnknown adds the key that SecretURI derives to the store, which must have PublicKey
type InsertUnknown struct {
	KeyType   keystore.KeyTypeID
	SecretURI string
	PublicKey []byte
}

func (SignWith) Method() Method      { return MethodSignWith }
func (HasKeys) Method() Method       { return MethodHasKeys }
func (InsertUnknown) Method() Method { return MethodInsertUnknown }

// Response matches the Operation that produced it. Store failures are carried in Err,
// and are not errors of the proxy itself.
type Response interface {
	Method() Method
}

type SignWithResult struct {
	Signature []byte
	Err       error
}

type HasKeysResult struct {
	HasKeys bool
}

type InsertResult struct {
	Err error
}

func (SignWithResult) Method() Method { return MethodSignWith }
func (HasKeysResult) Method() Method  { return MethodHasKeys }
func (InsertResult) Method() Method   { return MethodInsertUnknown }

// failedResponse is the response for an operation the store could not complete normally.
// HasKeys has no error payload, so it reports the keys as not present.
func failedResponse(op Operation, err error) Response {
	switch op.(type) {
	case SignWith:
		return SignWithResult{Err: err}
	case HasKeys:
		return HasKeysResult{HasKeys: false}
	case InsertUnknown:
		return InsertResult{Err: err}
	default:
		return nil
	}
}
