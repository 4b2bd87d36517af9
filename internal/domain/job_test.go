package domain

import "testing"

func TestJobStatusCanTransition(t *testing.T) {
	cases := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobPending, JobProcessing, true},
		{JobPending, JobError, true},
		{JobPending, JobConcluded, false},
		{JobProcessing, JobConcluded, true},
		{JobProcessing, JobError, true},
		{JobProcessing, JobPending, false},
		{JobError, JobPending, true},
		{JobError, JobProcessing, false},
		{JobConcluded, JobPending, false},
		{JobConcluded, JobError, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestJobProgress(t *testing.T) {
	j := &IngestionJob{Status: JobProcessing, TotalChunks: 40, ChunksDone: 10}
	if got := j.Progress(); got != 25 {
		t.Errorf("expected 25%%, got %d", got)
	}

	j.TotalChunks = 0
	if got := j.Progress(); got != 0 {
		t.Errorf("expected 0%% with unknown total, got %d", got)
	}

	j.Status = JobConcluded
	if got := j.Progress(); got != 100 {
		t.Errorf("concluded job must report 100%%, got %d", got)
	}
}

func TestJobCancelled(t *testing.T) {
	msg := CancelledMessage
	j := &IngestionJob{Status: JobError, ErrorMessage: &msg}
	if !j.Cancelled() {
		t.Error("expected cancelled job to report Cancelled")
	}

	other := "embedding provider unavailable"
	j.ErrorMessage = &other
	if j.Cancelled() {
		t.Error("failed job must not report Cancelled")
	}
}

func TestChunkEmbeddedText(t *testing.T) {
	c := &Chunk{Content: "O recurso foi provido."}
	if got := c.EmbeddedText(); got != c.Content {
		t.Errorf("without summary, embedded text must equal content, got %q", got)
	}

	c.ContextSummary = "Trecho do voto no recurso de apelação 0001234-56.2023.8.26.0100."
	want := c.ContextSummary + "\n\n" + c.Content
	if got := c.EmbeddedText(); got != want {
		t.Errorf("embedded text = %q, want summary first", got)
	}
}
