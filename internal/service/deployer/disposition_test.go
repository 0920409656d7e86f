package deployer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseAttachmentFilename covers quoting, case folding and malformed headers.
func TestParseAttachmentFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{name: "quoted", header: `attachment; filename="build-42.zip"`, want: "build-42.zip", wantOK: true},
		{name: "unquoted", header: `attachment; filename=build-42.zip`, want: "build-42.zip", wantOK: true},
		{name: "mixed case directive", header: `Attachment; FileName="build-42.zip"`, want: "build-42.zip", wantOK: true},
		{name: "upper case", header: `ATTACHMENT; FILENAME=build.zip`, want: "build.zip", wantOK: true},
		{name: "keeps file name case", header: `attachment; filename="App-Build.ZIP"`, want: "App-Build.ZIP", wantOK: true},
		{name: "trailing params", header: `attachment; filename="b.zip"; size=1024`, want: "b.zip", wantOK: true},
		{name: "leading params", header: `attachment; size=1024; filename=b.zip`, want: "b.zip", wantOK: true},
		{name: "surrounding spaces", header: "  attachment; filename= b.zip ;", want: "b.zip", wantOK: true},
		{name: "no space after semicolon", header: `attachment;filename="b.zip"`, want: "b.zip", wantOK: true},
		{name: "strips directories", header: `attachment; filename="../../etc/passwd"`, want: "passwd", wantOK: true},
		{name: "strips windows directories", header: `attachment; filename="C:\builds\b.zip"`, want: "b.zip", wantOK: true},
		{name: "tab after directive", header: "attachment\tfilename=b.zip", want: "b.zip", wantOK: true},
		{name: "invalid utf-8 before filename", header: "attachment; x=\xff\xff\xff\xff\xff\xff; filename=ab", want: "ab", wantOK: true},
		{name: "kelvin sign before filename", header: "attachment; title=\u212a\u212a\u212a; filename=\"b.zip\"", want: "b.zip", wantOK: true},
		{name: "invalid utf-8 only", header: "attachment; \xff\xfe\xfd", wantOK: false},
		{name: "empty header", header: "", wantOK: false},
		{name: "longer directive", header: "attachmentx; filename=a", wantOK: false},
		{name: "directive prefix only", header: "attach; filename=a", wantOK: false},
		{name: "inline", header: `inline; filename="b.zip"`, wantOK: false},
		{name: "attachment without filename", header: "attachment", wantOK: false},
		{name: "only extended filename", header: `attachment; filename*=UTF-8''b.zip`, wantOK: false},
		{name: "empty filename", header: `attachment; filename=""`, wantOK: false},
		{name: "dot dot", header: `attachment; filename=".."`, wantOK: false},
		{name: "directory only", header: `attachment; filename="/"`, wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseAttachmentFilename(tt.header)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
