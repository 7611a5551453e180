package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		want    FieldClass
		wantErr bool
	}{
		{"h06", FieldClauseCode, false},
		{"h16", FieldClauseCode, false},
		{"h07", FieldFactOccurrenceDate, false},
		{"h27", FieldFactOccurrenceDate, false},
		{"h08", FieldDetail, false},
		{"h00", FieldUnclassified, false},
		{"TYPEK", FieldUnclassified, false},
		{"", FieldUnclassified, true},
		{"h06 ", FieldUnclassified, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.name)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrAmbiguousField))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodeRowFactOccurrenceDate(t *testing.T) {
	got, issues := DecodeRow(RawRow{Hidden: []HiddenField{{Name: "h07", Value: "20250815"}}})
	assert.Empty(t, issues)
	require.NotNil(t, got.FactOccurrenceDate)
	assert.Equal(t, "2025-08-15", *got.FactOccurrenceDate)
}

func TestDecodeRowSkipsBlankValues(t *testing.T) {
	got, issues := DecodeRow(RawRow{Hidden: []HiddenField{
		{Name: "h06", Value: "   "},
		{Name: "h07", Value: ""},
		{Name: "h08", Value: "\n"},
	}})
	assert.Empty(t, issues)
	assert.Nil(t, got.ClauseCode)
	assert.Nil(t, got.FactOccurrenceDate)
	assert.Nil(t, got.DetailContent)
}

func TestDecodeRowDetail(t *testing.T) {
	detail := "主旨：處分資產\r\n事實發生日：114/08/14\r\n說明：無\r\n符合條款第二條第20款\r\n"
	got, issues := DecodeRow(RawRow{Markup: "<tr></tr>", Hidden: []HiddenField{{Name: "h18", Value: detail}}})
	assert.Empty(t, issues)

	require.NotNil(t, got.DetailContent)
	assert.Equal(t, "主旨：處分資產\r\n事實發生日：114/08/14\r\n說明：無\r\n符合條款第二條第20款", *got.DetailContent)
	require.NotNil(t, got.FactDate)
	assert.Equal(t, "114/08/14", *got.FactDate)
	require.NotNil(t, got.AnnouncementType)
	assert.Equal(t, "符合條款第二條第20款", *got.AnnouncementType)
	assert.Equal(t, "<tr></tr>", got.RawMarkup)
}

func TestDecodeRowDetailWithoutLabels(t *testing.T) {
	got, _ := DecodeRow(RawRow{Hidden: []HiddenField{{Name: "h08", Value: "事實發生日 114/08/14\n其他說明"}}})
	require.NotNil(t, got.DetailContent)
	assert.Nil(t, got.FactDate, "label line without a full-width colon yields nothing")
	assert.Nil(t, got.AnnouncementType)
}

func TestDecodeRowReportsIssues(t *testing.T) {
	got, issues := DecodeRow(RawRow{Hidden: []HiddenField{
		{Name: "h06", Value: "11"},
		{Name: "h16", Value: "12"},
		{Name: "h09", Value: "something"},
		{Name: "", Value: "orphan"},
	}})
	require.NotNil(t, got.ClauseCode)
	assert.Equal(t, "12", *got.ClauseCode, "later value wins")
	require.Len(t, issues, 3)
	assert.Contains(t, issues[0].Reason, "conflicts with h06")
	assert.Equal(t, "unclassified", issues[1].Reason)
	assert.Contains(t, issues[2].Reason, "empty name")
}
