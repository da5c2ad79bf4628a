package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaekwang-park/kata-api/internal/model"
	"github.com/jaekwang-park/kata-api/internal/view"
)

func sampleKatas() []model.Kata {
	return []model.Kata{
		{ID: "k3", Title: "Multiply", Completed: true},
		{ID: "k2", Title: "Sum of positive"},
		{ID: "k1", Title: "Even or odd", Completed: true},
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    view.Filter
		wantErr bool
	}{
		{"", view.FilterAll, false},
		{"all", view.FilterAll, false},
		{"active", view.FilterActive, false},
		{"completed", view.FilterCompleted, false},
		{"done", "", true},
		{"Active", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := view.ParseFilter(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	katas := sampleKatas()

	tests := []struct {
		filter view.Filter
		want   []string
	}{
		{view.FilterAll, []string{"k3", "k2", "k1"}},
		{view.FilterActive, []string{"k2"}},
		{view.FilterCompleted, []string{"k3", "k1"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := view.Apply(katas, tt.filter)

			ids := make([]string, 0, len(got))
			for _, k := range got {
				ids = append(ids, k.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	assert.Len(t, katas, 3, "input must not be modified")
}

func TestApply_Empty(t *testing.T) {
	got := view.Apply(nil, view.FilterActive)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCount(t *testing.T) {
	assert.Equal(t, model.KataStats{Total: 3, Completed: 2, Active: 1}, view.Count(sampleKatas()))
	assert.Equal(t, model.KataStats{}, view.Count(nil))
}

func TestDifficulties_EasiestFirst(t *testing.T) {
	require.Len(t, view.Difficulties, 8)
	assert.Equal(t, "8kyu", view.Difficulties[0])
	assert.Equal(t, "1kyu", view.Difficulties[len(view.Difficulties)-1])
}
