package session

import (
	"fmt"
	"strings"
	"time"
)

// Messages holds the human-readable texts of status notifications.
// Templates may contain one fmt verb for their argument.
type Messages struct {
	Connected    string // arg: streamer ID
	Entered      string
	StreamEnded  string
	ConnectError string // arg: failure detail
	Reconnecting string // arg: delay in seconds
	Disconnected string
}

// DefaultMessages returns the built-in status texts.
func DefaultMessages() Messages {
	return Messages{
		Connected:    "%s 채팅방에 연결됨",
		Entered:      "채팅방 입장 완료",
		StreamEnded:  "방송이 종료되었습니다",
		ConnectError: "연결 오류: %s",
		Reconnecting: "%d초 후 재연결 시도...",
		Disconnected: "연결 해제됨",
	}
}

// withDefaults fills empty fields from DefaultMessages.
func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	if m.Connected == "" {
		m.Connected = d.Connected
	}
	if m.Entered == "" {
		m.Entered = d.Entered
	}
	if m.StreamEnded == "" {
		m.StreamEnded = d.StreamEnded
	}
	if m.ConnectError == "" {
		m.ConnectError = d.ConnectError
	}
	if m.Reconnecting == "" {
		m.Reconnecting = d.Reconnecting
	}
	if m.Disconnected == "" {
		m.Disconnected = d.Disconnected
	}
	return m
}

func (m Messages) connected(streamerID string) string {
	return format(m.Connected, streamerID)
}

func (m Messages) connectError(err error) string {
	return format(m.ConnectError, err.Error())
}

func (m Messages) reconnecting(delay time.Duration) string {
	return format(m.Reconnecting, int(delay.Round(time.Second)/time.Second))
}

// format applies arg only when the template has a verb for it.
func format(tmpl string, arg any) string {
	if !strings.Contains(tmpl, "%") {
		return tmpl
	}
	return fmt.Sprintf(tmpl, arg)
}
