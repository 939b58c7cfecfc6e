// lock_test.go
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"os"
	"testing"
	"time"
)

func TestFSLock_AcquireRelease(t *testing.T) {
	dir := t.TempDir()
	l := newFSLock(dir, time.Second, time.Minute, NewNoOpLogger())

	if err := l.acquire(); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := os.Stat(l.path); err != nil {
		t.Fatalf("expected sentinel file, got %v", err)
	}
	if err := l.release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := os.Stat(l.path); !os.IsNotExist(err) {
		t.Fatalf("expected sentinel to be removed, got %v", err)
	}
}

func TestFSLock_ContentionReturnsLockBusy(t *testing.T) {
	dir := t.TempDir()
	holder := newFSLock(dir, 200*time.Millisecond, time.Hour, NewNoOpLogger())
	if err := holder.acquire(); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer holder.release()

	contender := newFSLock(dir, 100*time.Millisecond, time.Hour, NewNoOpLogger())
	err := contender.acquire()
	if err == nil {
		t.Fatal("expected LockBusy while sentinel is held")
	}
}

func TestFSLock_StealsStaleSentinel(t *testing.T) {
	dir := t.TempDir()
	abandoned := newFSLock(dir, time.Second, 50*time.Millisecond, NewNoOpLogger())
	if err := abandoned.tryCreate("crashed-owner"); err != nil {
		t.Fatalf("seed sentinel: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	newOwner := newFSLock(dir, time.Second, 50*time.Millisecond, NewNoOpLogger())
	if err := newOwner.acquire(); err != nil {
		t.Fatalf("expected stale sentinel to be stolen, got %v", err)
	}
	newOwner.release()
}
