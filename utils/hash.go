package utils

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
)

// CalculateMD5 computes the hex-encoded MD5 digest of data.
// Returned alongside downloads so callers can verify content after base64 decoding.
func CalculateMD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// EncodeBase64 encodes data with standard padded base64 for JSON transport.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
