// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package normalize

import "strings"

// docLength is the national taxpayer-ID (CPF) digit count. Shorter digit
// strings are zero-padded up to it; longer ones pass through unpadded so
// distinct CNPJ-length documents are never merged.
const docLength = 11

// NormalizeDoc reduces a raw customer document to the canonical join key
// used by every downstream aggregation. Two raw values that normalize to
// the same key are the same customer. Returns "" when no digits remain.
func NormalizeDoc(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if digits == "" {
		return ""
	}
	if len(digits) < docLength {
		return strings.Repeat("0", docLength-len(digits)) + digits
	}
	return digits
}
