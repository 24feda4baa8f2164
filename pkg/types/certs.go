package types

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// RootCertificates 路由使用的信任锚
//
// 零值表示使用系统信任库。
type RootCertificates struct {
	der [][]byte
}

// NativeRoots 使用系统信任库
func NativeRoots() RootCertificates {
	return RootCertificates{}
}

// RootsFromDER 使用给定的 DER 证书作为唯一信任锚
func RootsFromDER(certs ...[]byte) RootCertificates {
	der := make([][]byte, len(certs))
	copy(der, certs)
	return RootCertificates{der: der}
}

// RootsFromPEM 从 PEM 数据中读取所有 CERTIFICATE 块
func RootsFromPEM(data []byte) (RootCertificates, error) {
	var der [][]byte
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type == "CERTIFICATE" {
			der = append(der, block.Bytes)
		}
	}
	if len(der) == 0 {
		return RootCertificates{}, ErrNoCertificates
	}
	return RootCertificates{der: der}, nil
}

// IsNative 是否使用系统信任库
func (r RootCertificates) IsNative() bool {
	return len(r.der) == 0
}

// CertPool 构建证书池
//
// 系统信任库返回 x509.SystemCertPool()。
func (r RootCertificates) CertPool() (*x509.CertPool, error) {
	if r.IsNative() {
		return x509.SystemCertPool()
	}
	pool := x509.NewCertPool()
	for i, raw := range r.der {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return nil, fmt.Errorf("parse root certificate %d: %w", i, err)
		}
		pool.AddCert(cert)
	}
	return pool, nil
}
