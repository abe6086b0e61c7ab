package manifest

import "testing"

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []StepStatus
		want     PipelineStatus
		wantExit int
	}{
		{
			name:     "no steps is success",
			statuses: nil,
			want:     PipelineSuccess,
			wantExit: ExitSuccess,
		},
		{
			name:     "all success",
			statuses: []StepStatus{StepSuccess, StepSuccess},
			want:     PipelineSuccess,
			wantExit: ExitSuccess,
		},
		{
			name:     "skipped steps do not fail the run",
			statuses: []StepStatus{StepSkipped, StepSuccess},
			want:     PipelineSuccess,
			wantExit: ExitSuccess,
		},
		{
			name:     "one failed step fails the run",
			statuses: []StepStatus{StepSuccess, StepFailed},
			want:     PipelineFailed,
			wantExit: ExitFailed,
		},
		{
			name:     "blocked wins over failed",
			statuses: []StepStatus{StepFailed, StepBlocked},
			want:     PipelineBlocked,
			wantExit: ExitBlocked,
		},
		{
			name:     "blocked alone",
			statuses: []StepStatus{StepBlocked},
			want:     PipelineBlocked,
			wantExit: ExitBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := make([]Step, len(tt.statuses))
			for i, s := range tt.statuses {
				steps[i] = Step{Name: "step", Status: s}
			}
			got, exit := DeriveStatus(steps)
			if got != tt.want {
				t.Errorf("DeriveStatus() status = %s, want %s", got, tt.want)
			}
			if exit != tt.wantExit {
				t.Errorf("DeriveStatus() exit = %d, want %d", exit, tt.wantExit)
			}
		})
	}
}
