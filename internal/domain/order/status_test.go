package order

import "testing"

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"pending to processing", StatusPending, StatusProcessing, true},
		{"pending skips to shipped", StatusPending, StatusShipped, true},
		{"pending skips to delivered", StatusPending, StatusDelivered, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"processing to shipped", StatusProcessing, StatusShipped, true},
		{"processing back to pending", StatusProcessing, StatusPending, false},
		{"shipped to delivered", StatusShipped, StatusDelivered, true},
		{"shipped to cancelled", StatusShipped, StatusCancelled, true},
		{"shipped back to processing", StatusShipped, StatusProcessing, false},
		{"delivered is terminal", StatusDelivered, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
		{"same status is a no-op", StatusProcessing, StatusProcessing, true},
		{"same terminal status is a no-op", StatusDelivered, StatusDelivered, true},
		{"unknown source status", Status("unknown"), StatusShipped, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("IsValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
