package service

import (
	"bytes"
	"fmt"
	"os"
	"testing"

	"pdf-tools-server/internal/domain"

	"github.com/stretchr/testify/require"
)

// minimalPDF builds a one-page PDF with a correct cross-reference table.
func minimalPDF(t testing.TB) []byte {
	t.Helper()

	content := "0 0 m 200 200 l S"
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, 0, len(objects))
	for i, obj := range objects {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /ID [<0123456789abcdef0123456789abcdef> <0123456789abcdef0123456789abcdef>] >>\n", len(objects)+1)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func pdfUpload(t testing.TB) *domain.Upload {
	return &domain.Upload{
		Filename:    "report.pdf",
		ContentType: domain.ContentTypePDF,
		Data:        minimalPDF(t),
	}
}

// requireNoWorkspaces asserts that root holds no scratch directories.
func requireNoWorkspaces(t *testing.T, root string) {
	t.Helper()
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Empty(t, names, "expected no scratch workspaces under %s", root)
}

func newTestPipeline(t *testing.T, fs FileSystem, observer Observer, ops ...*domain.Operation) (*Pipeline, string, *MockLogger) {
	t.Helper()
	root := t.TempDir()
	logger := NewMockLogger()
	workspaces := NewWorkspaceManager(root, fs, observer, logger)
	return NewPipeline(workspaces, observer, logger, ops...), root, logger
}
