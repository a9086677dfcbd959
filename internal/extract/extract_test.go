package extract

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "collapses spaces", in: "Go    and\tSQL", want: "Go and SQL"},
		{name: "drops blank lines", in: "Jane Doe\r\n\r\n   \nEngineer", want: "Jane Doe\nEngineer"},
		{name: "whitespace only", in: " \n\t\n ", want: ""},
		{name: "strips nul", in: "A\x00B", want: "AB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Fatalf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromBytesRejectsNonPDF(t *testing.T) {
	_, err := FromBytes(context.Background(), []byte("PK\x03\x04 not a pdf"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestFromBytesReportsBrokenPDF(t *testing.T) {
	_, err := FromBytes(context.Background(), []byte("%PDF-1.4\ngarbage"))
	if err == nil {
		t.Fatal("expected parse error for truncated pdf")
	}
	if errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("truncated pdf should be a parse error, got %v", err)
	}
}

func TestFromBytesHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FromBytes(ctx, []byte("%PDF-1.4")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type stubStore struct {
	body string
	err  error
}

func (s stubStore) Save(ctx context.Context, ownerKey, fileName string, r io.Reader) (string, int64, string, error) {
	return "", 0, "", nil
}

func (s stubStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func (s stubStore) Delete(ctx context.Context, storageKey string) error { return nil }

func TestTextWrapsOpenError(t *testing.T) {
	openErr := errors.New("missing object")
	_, err := Text(context.Background(), stubStore{err: openErr}, "k/cv.pdf")
	if !errors.Is(err, openErr) {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
	if !strings.Contains(err.Error(), "k/cv.pdf") {
		t.Fatalf("expected storage key in error, got %v", err)
	}
}
