package integration

import (
	"fmt"
	"time"
)

// TestAccount generates unique test credentials using a timestamp.
func TestAccount(suffix string) (email, password string) {
	ts := time.Now().UnixNano()
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	password = "TestPassword123"
	return
}
