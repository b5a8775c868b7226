package store

import (
	"testing"

	"github.com/umaremlyn/Adstreamai/internal/domain"
)

func ptrString(value string) *string {
	return &value
}

func TestBuildCampaignUpdateClause(t *testing.T) {
	tests := []struct {
		name       string
		update     domain.CampaignUpdate
		wantClause string
		wantArgs   []interface{}
	}{
		{
			name:       "empty patch still touches updated_at",
			update:     domain.CampaignUpdate{},
			wantClause: "updated_at = NOW()",
			wantArgs:   []interface{}{},
		},
		{
			name:       "status only",
			update:     domain.CampaignUpdate{Status: ptrString("active")},
			wantClause: "updated_at = NOW(), status = $1",
			wantArgs:   []interface{}{"active"},
		},
		{
			name: "full patch keeps column order and numbering",
			update: domain.CampaignUpdate{
				ProductName:    ptrString("Acme Shoes"),
				TargetAudience: ptrString("18-35 year olds"),
				Tone:           ptrString("professional"),
				Status:         ptrString("paused"),
			},
			wantClause: "updated_at = NOW(), product_name = $1, target_audience = $2, tone = $3, status = $4",
			wantArgs:   []interface{}{"Acme Shoes", "18-35 year olds", "professional", "paused"},
		},
		{
			name: "sparse patch skips unset columns",
			update: domain.CampaignUpdate{
				Tone:   ptrString("playful"),
				Status: ptrString("draft"),
			},
			wantClause: "updated_at = NOW(), tone = $1, status = $2",
			wantArgs:   []interface{}{"playful", "draft"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClause, gotArgs := buildCampaignUpdateClause(tt.update)
			if gotClause != tt.wantClause {
				t.Fatalf("expected clause %q, got %q", tt.wantClause, gotClause)
			}
			if len(gotArgs) != len(tt.wantArgs) {
				t.Fatalf("expected %d args, got %d", len(tt.wantArgs), len(gotArgs))
			}
			for i := range gotArgs {
				if gotArgs[i] != tt.wantArgs[i] {
					t.Fatalf("arg %d: expected %v, got %v", i, tt.wantArgs[i], gotArgs[i])
				}
			}
		})
	}
}
