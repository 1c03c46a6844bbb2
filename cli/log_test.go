package cli

import (
	"testing"

	"github.com/ardnew/derap/log"
)

func TestLogConfig_Scan(t *testing.T) {
	prev := log.Default()
	t.Cleanup(func() { log.SetDefault(prev) })

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "separate values",
			args: []string{"classes", "--log-level", "debug", "--log-format", "json", "."},
			want: logConfig{Level: "debug", Format: "json"},
		},
		{
			name: "assigned values",
			args: []string{"--log-level=warn", "--log-format=text"},
			want: logConfig{Level: "warn", Format: "text"},
		},
		{
			name: "booleans",
			args: []string{"--log-caller", "--no-log-pretty", "--log-level", "--other"},
			want: logConfig{Caller: true},
		},
		{
			name: "assigned booleans",
			args: []string{"--log-caller=false", "--no-log-pretty=false", "--log-pretty=maybe"},
			want: logConfig{Pretty: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got logConfig

			got.scan(tt.args)

			if got != tt.want {
				t.Errorf("scan(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestLogConfig_Start(t *testing.T) {
	prev := log.Default()
	t.Cleanup(func() { log.SetDefault(prev) })

	f := logConfig{Level: "error", Format: "json", TimeLayout: "none"}
	f.start(t.Context())

	if got := log.Default().Level(); got != log.LevelError {
		t.Errorf("Level() = %v, want %v", got, log.LevelError)
	}

	if got := log.Default().Format(); got != log.FormatJSON {
		t.Errorf("Format() = %v, want %v", got, log.FormatJSON)
	}
}

func TestLogConfig_Vars(t *testing.T) {
	t.Parallel()

	vars := (&logConfig{}).vars()

	if got, want := vars["logLevelEnum"], "trace,debug,info,warn,error"; got != want {
		t.Errorf("logLevelEnum = %q, want %q", got, want)
	}

	if got, want := vars["logFormatEnum"], "json,text"; got != want {
		t.Errorf("logFormatEnum = %q, want %q", got, want)
	}
}
