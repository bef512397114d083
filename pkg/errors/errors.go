package errors

import "errors"

var (
	// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
	ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
	// ErrLockHeld 分布式锁已被其他进程持有
	ErrLockHeld = errors.New("资源正被其他操作占用，请稍后重试")
)
