package internal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionDefaultsToEmpty(t *testing.T) {
	s := NewSession()
	assert.Equal(t, "", s.Current())
}

func TestSessionLastWriteWins(t *testing.T) {
	s := NewSession()
	s.SetCurrent("first_video1")
	s.SetCurrent("secondvideo2")
	assert.Equal(t, "secondvideo2", s.Current())
}

func TestSessionsAreIndependent(t *testing.T) {
	a := NewSession()
	b := NewSession()
	a.SetCurrent("tAP1eZYEuKA")
	assert.Equal(t, "", b.Current())
}

func TestSessionConcurrentAccess(t *testing.T) {
	s := NewSession()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.SetCurrent("tAP1eZYEuKA")
			_ = s.Current()
		}()
	}
	wg.Wait()
	assert.Equal(t, "tAP1eZYEuKA", s.Current())
}
