package interfaces

import (
	"errors"
	"time"

	"github.com/dep2p/go-chatnet/pkg/types"
)

// ErrorClassifier 可自我分类的错误
type ErrorClassifier interface {
	error
	Classify() types.ErrorClass
}

// RetryHinter 能给出建议重试间隔的错误
type RetryHinter interface {
	RetryAfter() (time.Duration, bool)
}

// Classify 返回错误链上第一个 ErrorClassifier 的分类
//
// 无法分类的错误视为 Retryable。
func Classify(err error) types.ErrorClass {
	var c ErrorClassifier
	if errors.As(err, &c) {
		return c.Classify()
	}
	return types.ErrorClassRetryable
}

// IsFatal 错误是否致命
func IsFatal(err error) bool {
	return err != nil && Classify(err) == types.ErrorClassFatal
}

// RetryAfter 返回错误链上第一个 RetryHinter 给出的间隔
func RetryAfter(err error) (time.Duration, bool) {
	var h RetryHinter
	if errors.As(err, &h) {
		return h.RetryAfter()
	}
	return 0, false
}
