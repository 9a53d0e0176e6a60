package content

import "testing"

func TestBuilderAndMarks(t *testing.T) {
	doc := NewBuilder("Report").
		Heading(0, "Title").
		Heading(9, "Sub").
		Paragraph("body").
		Mark("end").
		Document()
	if doc.Title != "Report" || doc.Len() != 4 {
		t.Fatalf("unexpected doc %+v", doc)
	}
	if doc.Blocks[0].Level != 1 || doc.Blocks[1].Level != 3 {
		t.Fatalf("heading levels not clamped: %d %d", doc.Blocks[0].Level, doc.Blocks[1].Level)
	}
	if m := doc.Marks(); len(m) != 1 || m[0] != "end" {
		t.Fatalf("marks = %v", m)
	}
}

func TestEmptyIgnoresMarks(t *testing.T) {
	if !(Document{}).Empty() {
		t.Fatalf("zero document should be empty")
	}
	if !NewBuilder("").Mark("x").Document().Empty() {
		t.Fatalf("mark-only document should be empty")
	}
	if NewBuilder("").PageBreak().Document().Empty() {
		t.Fatalf("page break is visible content")
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := NewBuilder("t").Table(Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}}).KeyValues(Pair{Label: "k", Value: "v"})
	orig := b.Document()
	cp := orig.Clone()
	cp.Blocks[0].Table.Rows[0][0] = "changed"
	cp.Blocks[1].Pairs[0].Value = "changed"
	if orig.Blocks[0].Table.Rows[0][0] != "1" || orig.Blocks[1].Pairs[0].Value != "v" {
		t.Fatalf("clone aliases original")
	}
}

func TestConcat(t *testing.T) {
	a := NewBuilder("").Paragraph("a").Document()
	b := NewBuilder("B").Paragraph("b").Document()
	c := NewBuilder("C").Paragraph("c").Document()
	got := Concat(a, b, c)
	if got.Title != "B" || got.Len() != 3 || got.Blocks[2].Text != "c" {
		t.Fatalf("concat = %+v", got)
	}
	built := NewBuilder("x").Append(a).Append(b).Document()
	if built.Len() != 2 {
		t.Fatalf("append len = %d", built.Len())
	}
}
