package pool

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrConflict 唯一键冲突（如重复的 chat (channel_id, log_id)）
	ErrConflict = errors.New("store: conflict")
	// ErrPoolClosed 任务池已关闭
	ErrPoolClosed = errors.New("store: pool closed")
)

// StoreError 存储任务失败：约束冲突、I/O 或序列化错误
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string { return "store task: " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == ErrConflict && errors.Is(e.Err, gorm.ErrDuplicatedKey)
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return se
	}
	return &StoreError{Err: err}
}
