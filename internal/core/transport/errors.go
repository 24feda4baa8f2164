package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/dep2p/go-chatnet/pkg/types"
)

var (
	// ErrNoAddresses 解析成功但没有可用地址
	ErrNoAddresses = errors.New("no addresses to dial")

	// ErrNilParams 路由为空
	ErrNilParams = errors.New("nil connection params")
)

// ============================================================================
//                              ConnectError
// ============================================================================

// ErrorKind 连接失败的阶段
type ErrorKind int

const (
	// KindDNS 解析失败
	KindDNS ErrorKind = iota
	// KindTCP TCP 连接失败
	KindTCP
	// KindTLSHandshake TLS 握手失败（非证书原因）
	KindTLSHandshake
	// KindCertificate 证书校验失败
	KindCertificate
	// KindInvalidConfig 路由配置无效（如信任锚无法解析）
	KindInvalidConfig
	// KindAborted 调用方取消
	KindAborted
)

// String 返回阶段名称
func (k ErrorKind) String() string {
	switch k {
	case KindDNS:
		return "dns"
	case KindTCP:
		return "tcp"
	case KindTLSHandshake:
		return "tls_handshake"
	case KindCertificate:
		return "certificate"
	case KindInvalidConfig:
		return "invalid_config"
	case KindAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ConnectError 传输层连接错误
type ConnectError struct {
	Kind  ErrorKind
	Route types.RouteType
	Host  string
	Err   error
}

// Error 实现 error 接口
func (e *ConnectError) Error() string {
	return fmt.Sprintf("transport %s failed (route=%s, host=%s): %v", e.Kind, e.Route, e.Host, e.Err)
}

// Unwrap 返回底层错误
func (e *ConnectError) Unwrap() error {
	return e.Err
}

// Classify 实现 ErrorClassifier
func (e *ConnectError) Classify() types.ErrorClass {
	switch e.Kind {
	case KindCertificate, KindInvalidConfig:
		return types.ErrorClassFatal
	default:
		return types.ErrorClassRetryable
	}
}

// isCertError 判断握手错误是否源于证书校验
func isCertError(err error) bool {
	var verr *tls.CertificateVerificationError
	if errors.As(err, &verr) {
		return true
	}
	var unknown x509.UnknownAuthorityError
	var hostname x509.HostnameError
	var invalid x509.CertificateInvalidError
	return errors.As(err, &unknown) || errors.As(err, &hostname) || errors.As(err, &invalid)
}
