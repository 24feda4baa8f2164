package types

import "errors"

// ============================================================================
//                              路由描述错误
// ============================================================================

var (
	// ErrZeroPort 端口为 0
	ErrZeroPort = errors.New("route port must be nonzero")

	// ErrEmptyHost 主机为空
	ErrEmptyHost = errors.New("route host must not be empty")

	// ErrUnknownRouteType 未知路由类型
	ErrUnknownRouteType = errors.New("unknown route type")
)

// ============================================================================
//                              证书错误
// ============================================================================

var (
	// ErrNoCertificates 未找到任何证书
	ErrNoCertificates = errors.New("no certificates found")
)
