// Package report carries user-facing feedback: progress and error
// messages are recorded on shared state and broadcast to websocket
// listeners. With UEPORT_DEV set, failures panic instead so stack
// traces surface immediately.
package report

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/woxer/ueport/config"
)

const (
	INFO = iota
	ERROR
	PROGRESS
)

type message struct {
	Message  string
	Details  string
	Time     time.Time
	Type     int
	Progress float32
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		ticker.Stop()
		unregisterClient(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second)); err != nil {
				return
			}
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[report] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[report] ws write ping error: %v", err)
				return
			}
		}
	}
}

// NewClient registers a websocket connection as a feedback listener
// and immediately replays the last message to it.
func NewClient(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, 32)}
	registerClient(c)
	go c.writePump()
	globalLock.Lock()
	defer globalLock.Unlock()
	if lastMessage != nil {
		c.send <- lastMessage
	}
}

var broadcast chan *message
var broadcastList map[*client]bool
var globalLock sync.Mutex
var lastMessage []byte

var lastErrorMessage string
var lastErrorDetails string

func registerClient(c *client) {
	globalLock.Lock()
	defer globalLock.Unlock()
	broadcastList[c] = true
}

func unregisterClient(c *client) {
	globalLock.Lock()
	defer globalLock.Unlock()
	delete(broadcastList, c)
}

func init() {
	broadcast = make(chan *message, 16)
	broadcastList = make(map[*client]bool)
	go func() {
		for m := range broadcast {
			data, err := json.Marshal(m)
			if err != nil {
				panic(err)
			}
			globalLock.Lock()
			lastMessage = data
			for c := range broadcastList {
				select {
				case c.send <- data:
				default:
				}
			}
			globalLock.Unlock()
		}
	}()
}

func send(msg, details string, _type int, progress float32) {
	if math.IsNaN(float64(progress)) || math.IsInf(float64(progress), 0) {
		progress = 0
	}
	broadcast <- &message{
		Message:  msg,
		Details:  details,
		Time:     time.Now(),
		Type:     _type,
		Progress: progress}
}

// Info broadcasts a progress-free informational message.
func Info(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	log.Printf("[report] %v", msg)
	send(msg, "", INFO, 0.0)
}

// Progress broadcasts a progress update in the 0..1 range.
func Progress(progress float32, format string, a ...interface{}) {
	send(fmt.Sprintf(format, a...), "", PROGRESS, progress)
}

// Failure records a user-facing failure and broadcasts it. In
// developer mode it panics with the message instead.
func Failure(msg, details string) {
	if config.DevMode() {
		panic(fmt.Sprintf("%v %v", msg, details))
	}
	log.Printf("[report] error: %v %v", msg, details)
	globalLock.Lock()
	lastErrorMessage = msg
	lastErrorDetails = details
	globalLock.Unlock()
	send(msg, details, ERROR, 0.0)
}

// LastError returns the last recorded failure message and details.
func LastError() (string, string) {
	globalLock.Lock()
	defer globalLock.Unlock()
	return lastErrorMessage, lastErrorDetails
}

// ClearError resets the recorded failure state.
func ClearError() {
	globalLock.Lock()
	defer globalLock.Unlock()
	lastErrorMessage = ""
	lastErrorDetails = ""
}
