// Package token はメール検証・パスワードリセット用のワンタイムトークンを生成します。
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// rawBytes は生成するトークンのバイト長です（hex文字列では64文字）。
const rawBytes = 32

// New は暗号学的に安全なランダムトークンを生成し、
// 平文トークンとそのSHA-256ダイジェスト（いずれもhex文字列）を返します。
// 平文はメールリンクにのみ使用し、永続化するのはダイジェストのみです。
func New() (raw string, digest string, err error) {
	buf := make([]byte, rawBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate random token: %w", err)
	}
	raw = hex.EncodeToString(buf)
	return raw, Hash(raw), nil
}

// Hash は平文トークンのSHA-256ダイジェストをhex文字列で返します。
// 検証時はリンク中の平文を同じ関数でハッシュ化し、保存値と比較します。
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
