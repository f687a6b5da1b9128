// Package color はユーザー作成時に割り当てる表示色を生成します。
package color

import (
	"fmt"
	"math/rand"
)

// Random は "#RRGGBB" 形式のランダムな表示色を返します。
// 登録時に一度だけ割り当てられ、以降は変更されません。
func Random() string {
	return fmt.Sprintf("#%06X", rand.Intn(0x1000000))
}
