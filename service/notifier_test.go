package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_ClearsAfterWindow(t *testing.T) {
	n := NewNotifier(30 * time.Millisecond)
	n.Error("boom")

	notice, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, NoticeError, notice.Level)
	assert.Equal(t, "boom", notice.Message)

	assert.Eventually(t, func() bool {
		_, ok := n.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestNotifier_NewNoticeRestartsWindow(t *testing.T) {
	n := NewNotifier(80 * time.Millisecond)
	n.Error("first")
	time.Sleep(50 * time.Millisecond)
	n.Success("second")
	time.Sleep(50 * time.Millisecond)

	notice, ok := n.Current()
	require.True(t, ok, "second notice must survive the first window")
	assert.Equal(t, "second", notice.Message)
	assert.Equal(t, NoticeSuccess, notice.Level)

	assert.Eventually(t, func() bool {
		_, ok := n.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestNotifier_Clear(t *testing.T) {
	n := NewNotifier(time.Minute)
	n.Error("boom")
	n.Clear()

	_, ok := n.Current()
	assert.False(t, ok)
}

func TestNotifier_NilIsNoop(t *testing.T) {
	var n *Notifier
	n.Error("ignored")
	n.Clear()
	_, ok := n.Current()
	assert.False(t, ok)
}

func TestNewNotifier_DefaultWindow(t *testing.T) {
	assert.Equal(t, DefaultNoticeWindow, NewNotifier(0).window)
}
