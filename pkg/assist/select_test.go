package assist

import (
	"sync"
	"testing"
)

func TestSelector(t *testing.T) {
	s := NewSelector("default-pipeline")

	if got := s.Choose("unknown"); got != "default-pipeline" {
		t.Errorf("unassigned device should use default, got %s", got)
	}

	s.Assign("kitchen_pi", "kitchen-pipeline")
	if got := s.Choose("kitchen_pi"); got != "kitchen-pipeline" {
		t.Errorf("got %s", got)
	}

	s.Clear("kitchen_pi")
	if got := s.Choose("kitchen_pi"); got != "default-pipeline" {
		t.Errorf("cleared device should fall back, got %s", got)
	}
}

func TestSelectorConcurrent(t *testing.T) {
	s := NewSelector("default")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Assign("dev", "p")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Choose("dev")
			}
		}()
	}
	wg.Wait()
}
