// lock.go: single-writer advisory lock over the plugin directory.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agilira/go-timecache"
)

const lockSentinelName = ".jsplugins.lock"

const lockPollInterval = 25 * time.Millisecond

// fsLock is a single-writer advisory lock implemented as a sentinel
// file under pluginsPath. A writer holds the lock for the duration of
// a mutating PluginManager call; readers (list, getInfo, require,
// runScript, alreadyInstalled) never take it.
//
// Acquisition polls for the sentinel's absence for up to lockWait; a
// sentinel older than lockStale is considered abandoned by a crashed
// owner and is stolen rather than waited out.
type fsLock struct {
	path      string
	lockWait  time.Duration
	lockStale time.Duration
	logger    Logger
}

func newFSLock(pluginsPath string, lockWait, lockStale time.Duration, logger Logger) *fsLock {
	return &fsLock{
		path:      filepath.Join(pluginsPath, lockSentinelName),
		lockWait:  lockWait,
		lockStale: lockStale,
		logger:    logger,
	}
}

// acquire blocks until the sentinel can be created or lockWait
// elapses, stealing a stale sentinel along the way. It never blocks
// indefinitely: callers that lose the race get LockBusy rather than a
// queued wait, per the concurrency model in the specification.
func (l *fsLock) acquire() error {
	deadline := time.Now().Add(l.lockWait)
	owner := fmt.Sprintf("pid:%d:%d", os.Getpid(), timecache.CachedTimeNano())

	for {
		if err := l.tryCreate(owner); err == nil {
			return nil
		}

		if l.stealIfStale() {
			continue
		}

		if time.Now().After(deadline) {
			return NewLockBusyError(filepath.Dir(l.path), l.lockWait.String())
		}
		time.Sleep(lockPollInterval)
	}
}

// tryCreate attempts to atomically create the sentinel file,
// succeeding only if no other writer currently holds it.
func (l *fsLock) tryCreate(owner string) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(owner)
	return err
}

// stealIfStale removes the sentinel if it is older than lockStale,
// treating its owner as crashed (single-node assumption: multi-host
// coordination is out of scope).
func (l *fsLock) stealIfStale() bool {
	info, err := os.Stat(l.path)
	if err != nil {
		return false
	}
	age := time.Since(info.ModTime())
	if age < l.lockStale {
		return false
	}
	l.logger.Warn("stealing stale plugin store lock", "age", age.String(), "path", l.path)
	return os.Remove(l.path) == nil
}

// release removes the sentinel file, allowing the next acquirer in.
func (l *fsLock) release() error {
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
