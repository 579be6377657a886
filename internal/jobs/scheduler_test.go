package jobs

import "testing"

func TestScheduler_AddValidSpec(t *testing.T) {
	s := NewScheduler()
	if err := s.Add("0 6 * * *", func() {}); err != nil {
		t.Errorf("valid cron spec rejected: %v", err)
	}
}

func TestScheduler_AddInvalidSpec(t *testing.T) {
	s := NewScheduler()
	if err := s.Add("not a cron spec", func() {}); err == nil {
		t.Error("invalid cron spec should be rejected")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler()
	if err := s.Add("@hourly", func() {}); err != nil {
		t.Fatal(err)
	}
	s.Start()
	s.Stop()
}
