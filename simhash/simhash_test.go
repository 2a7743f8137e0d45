package simhash

import "testing"

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("Apple MacBook Air M2 13-inch")
	b := Fingerprint("apple macbook air m2 13 inch")
	if a != b {
		t.Errorf("case and punctuation should not matter: %064b vs %064b", a, b)
	}
}

func TestFingerprint_Empty(t *testing.T) {
	for _, in := range []string{"", "   \t\n", "---"} {
		if fp := Fingerprint(in); fp != 0 {
			t.Errorf("Fingerprint(%q) = %064b, want 0", in, fp)
		}
	}
}

func TestListing_SamePage(t *testing.T) {
	page := []string{
		"HP Victus Gaming Laptop 15.6 inch",
		"Lenovo IdeaPad Slim 3 Intel Core i5",
		"ASUS Vivobook 15 Thin and Light",
	}
	if Listing(page) != Listing(append([]string(nil), page...)) {
		t.Error("identical listings should have identical fingerprints")
	}
}

func TestListing_DifferentPages(t *testing.T) {
	page1 := []string{
		"HP Victus Gaming Laptop 15.6 inch",
		"Lenovo IdeaPad Slim 3 Intel Core i5",
		"ASUS Vivobook 15 Thin and Light",
	}
	page2 := []string{
		"Maybelline New York Super Stay Matte Ink Liquid Lipstick",
		"Lakme 9 to 5 Primer and Matte Lip Color",
		"SUGAR Cosmetics Smudge Me Not Liquid Lipstick",
	}
	if d := Distance(Listing(page1), Listing(page2)); d <= RepeatThreshold {
		t.Errorf("unrelated listings too close: distance %d", d)
	}
}

func TestListing_Empty(t *testing.T) {
	if fp := Listing(nil); fp != 0 {
		t.Errorf("Listing(nil) = %d, want 0", fp)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0xFF, 0xFF, 0},
		{"all different", 0, ^uint64(0), 64},
		{"one bit", 0, 1, 1},
		{"two bits", 0, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilar(t *testing.T) {
	if !Similar(5, 5, 0) {
		t.Error("equal fingerprints should be similar at threshold 0")
	}
	if Similar(0, 0xF, 3) {
		t.Error("distance 4 should not be similar at threshold 3")
	}
	if !Similar(0, 0x7, RepeatThreshold) {
		t.Error("distance 3 should be similar at RepeatThreshold")
	}
}
