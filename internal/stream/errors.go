package stream

import "fmt"

// HandlerError 处理单条推送命令时的存储失败；不影响后续命令的处理
type HandlerError struct {
	Method string
	Err    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handle %s: %v", e.Method, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }
