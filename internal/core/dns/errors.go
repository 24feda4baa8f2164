package dns

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-chatnet/pkg/types"
)

var (
	// ErrNoRecords 查询成功但没有地址
	ErrNoRecords = errors.New("dns: no address records")

	// ErrBadRcode 服务器返回错误码
	ErrBadRcode = errors.New("dns: server returned error rcode")

	// ErrDoHStatus DoH 服务器返回非 200
	ErrDoHStatus = errors.New("dns: unexpected DoH status")
)

// LookupError 所有策略都失败
//
// 总是 Retryable。
type LookupError struct {
	Host  string
	Cause error
}

// Error 实现 error 接口
func (e *LookupError) Error() string {
	return fmt.Sprintf("dns lookup failed for %s: %v", e.Host, e.Cause)
}

// Unwrap 返回底层错误
func (e *LookupError) Unwrap() error {
	return e.Cause
}

// Classify 实现 ErrorClassifier
func (e *LookupError) Classify() types.ErrorClass {
	return types.ErrorClassRetryable
}
