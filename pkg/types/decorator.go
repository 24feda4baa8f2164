package types

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// ============================================================================
//                              HTTPRequestDecorator
// ============================================================================

// DecoratorKind 装饰器种类
type DecoratorKind int

const (
	// DecoratorHeader 追加单个请求头
	DecoratorHeader DecoratorKind = iota
	// DecoratorHeaderMap 追加一组请求头
	DecoratorHeaderMap
	// DecoratorPathPrefix 为请求路径添加前缀
	DecoratorPathPrefix
	// DecoratorGeneric 任意变换
	DecoratorGeneric
)

// HTTPRequestDecorator 作用于握手请求的纯变换
//
// 只能通过 Header / HeaderMap / PathPrefix / Generic 构造。
// 装饰器只作用于连接建立时的那一个请求，不影响后续流量，
// 也不读取尝试次数、时间等外部状态。
type HTTPRequestDecorator struct {
	kind    DecoratorKind
	name    string
	value   string
	headers http.Header
	prefix  string
	fn      func(*http.Request)
}

// Header 追加单个请求头
func Header(name, value string) HTTPRequestDecorator {
	return HTTPRequestDecorator{kind: DecoratorHeader, name: name, value: value}
}

// HeaderMap 追加一组请求头
func HeaderMap(h http.Header) HTTPRequestDecorator {
	return HTTPRequestDecorator{kind: DecoratorHeaderMap, headers: h.Clone()}
}

// PathPrefix 为请求路径添加前缀
//
//	PathPrefix("/chat") 作用于 "/v1/endpoint" 得到 "/chat/v1/endpoint"
func PathPrefix(prefix string) HTTPRequestDecorator {
	return HTTPRequestDecorator{kind: DecoratorPathPrefix, prefix: strings.TrimSuffix(prefix, "/")}
}

// Generic 任意变换
func Generic(fn func(*http.Request)) HTTPRequestDecorator {
	return HTTPRequestDecorator{kind: DecoratorGeneric, fn: fn}
}

// Kind 返回装饰器种类
func (d HTTPRequestDecorator) Kind() DecoratorKind {
	return d.kind
}

// Decorate 将装饰器应用到请求上，返回同一请求
func (d HTTPRequestDecorator) Decorate(req *http.Request) *http.Request {
	switch d.kind {
	case DecoratorHeader:
		req.Header.Add(d.name, d.value)
	case DecoratorHeaderMap:
		for k, vs := range d.headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	case DecoratorPathPrefix:
		path := req.URL.Path
		if path == "" {
			path = "/"
		}
		req.URL.Path = d.prefix + path
		if req.URL.RawPath != "" {
			req.URL.RawPath = d.prefix + req.URL.RawPath
		}
	case DecoratorGeneric:
		if d.fn != nil {
			d.fn(req)
		}
	}
	return req
}

// ============================================================================
//                              DecoratorSeq
// ============================================================================

// DecoratorSeq 有序装饰器序列，按从左到右的顺序应用
type DecoratorSeq []HTTPRequestDecorator

// Decorate 依次应用序列中的装饰器
func (s DecoratorSeq) Decorate(req *http.Request) *http.Request {
	for _, d := range s {
		req = d.Decorate(req)
	}
	return req
}

// With 返回追加了 d 的新序列，原序列不变
func (s DecoratorSeq) With(d HTTPRequestDecorator) DecoratorSeq {
	out := make(DecoratorSeq, 0, len(s)+1)
	out = append(out, s...)
	return append(out, d)
}

// BasicAuthorization 生成 HTTP Basic 认证头的值
func BasicAuthorization(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
