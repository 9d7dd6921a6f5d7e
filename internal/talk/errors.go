package talk

import "fmt"

// ClientError 客户端操作失败；Err 为 *session.RequestError 或 *pool.StoreError
type ClientError struct {
	Op  string
	Err error
}

func (e *ClientError) Error() string { return fmt.Sprintf("talk %s: %v", e.Op, e.Err) }

func (e *ClientError) Unwrap() error { return e.Err }
