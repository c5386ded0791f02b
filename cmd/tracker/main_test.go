package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
)

func TestRunReturnsStartupErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "relative store URL",
			cfg:  config.Config{Port: "0", StoreURL: "localhost:5000/api"},
			want: "initialize store client",
		},
		{
			name: "sheets without credentials",
			cfg: config.Config{
				Port:                "0",
				StoreURL:            "http://localhost:5000/api",
				GoogleSpreadsheetID: "sheet-id",
			},
			want: "initialize Google Sheets export",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := run(&cfg, applog.Discard())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
