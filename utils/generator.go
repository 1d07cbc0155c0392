package utils

import (
	"fmt"
	"math/rand"
	"time"
)

const roomCodeLength = 10
const letterBytes = "abcdefghijklmnopqrstuvwxyz0123456789"

var seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))

// GenerateMeetingLink returns a fresh meeting-room URL for a session.
func GenerateMeetingLink() string {
	b := make([]byte, roomCodeLength)
	for i := range b {
		b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
	}
	return fmt.Sprintf("https://meet.learnlab.app/%s", string(b))
}
