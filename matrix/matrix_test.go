package matrix

import "testing"

func TestNew(t *testing.T) {
	if _, err := New(2, []float64{1, 0.5, 0.5}); err == nil {
		t.Fatalf("New with 3 scores for dimension 2 succeeded, want error")
	}
	if _, err := New(-1, nil); err == nil {
		t.Fatalf("New with negative dimension succeeded, want error")
	}

	src := []float64{1, 0.5, 0.5, 1}
	m, err := New(2, src)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	src[1] = 9
	if got := m.At(0, 1); got != 0.5 {
		t.Fatalf("At(0,1) = %v after mutating source, want 0.5", got)
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if m.Bytes() != 32 {
		t.Fatalf("Bytes() = %d, want 32", m.Bytes())
	}
}

func TestFromRows(t *testing.T) {
	if _, err := FromRows([][]float64{{1, 0.2}, {0.2}}); err == nil {
		t.Fatalf("FromRows with ragged rows succeeded, want error")
	}
	m, err := FromRows([][]float64{
		{1, 0.2, 0.3},
		{0.2, 1, 0.4},
		{0.3, 0.4, 1},
	})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	row := m.Row(1)
	if len(row) != 3 || row[2] != 0.4 {
		t.Fatalf("Row(1) = %v, want [0.2 1 0.4]", row)
	}
	if cap(row) != 3 {
		t.Fatalf("cap(Row(1)) = %d, want 3 so appends cannot clobber row 2", cap(row))
	}
	col := m.Column(2)
	if col[0] != 0.3 || col[1] != 0.4 || col[2] != 1 {
		t.Fatalf("Column(2) = %v, want [0.3 0.4 1]", col)
	}
	cp := m.RowCopy(0)
	cp[0] = 42
	if m.At(0, 0) != 1 {
		t.Fatalf("RowCopy aliases matrix storage")
	}
}

func TestAtOutOfRangePanics(t *testing.T) {
	m, _ := New(1, []float64{1})
	defer func() {
		if recover() == nil {
			t.Fatalf("At(1,0) did not panic")
		}
	}()
	_ = m.At(1, 0)
}
