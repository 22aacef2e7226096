package model

import "testing"

func TestNewPageRequestBounds(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, DefaultPageLimit},
		{-3, 5, 1, 5},
		{2, 1000, 2, MaxPageLimit},
		{4, 10, 4, 10},
		{int(^uint(0) >> 1), MaxPageLimit, MaxPage, MaxPageLimit},
	}
	for _, tt := range tests {
		got := NewPageRequest(tt.page, tt.limit)
		if got.Page != tt.wantPage || got.Limit != tt.wantLimit {
			t.Fatalf("NewPageRequest(%d, %d) = %+v", tt.page, tt.limit, got)
		}
	}
	if off := NewPageRequest(3, 10).Offset(); off != 20 {
		t.Fatalf("expected offset 20, got %d", off)
	}
	if off := NewPageRequest(int(^uint(0)>>1), MaxPageLimit).Offset(); off < 0 {
		t.Fatalf("offset overflowed: %d", off)
	}
}

func TestPagePagination(t *testing.T) {
	p := Page[int]{Total: 45, PageRequest: NewPageRequest(2, 20)}
	got := p.Pagination()
	want := Pagination{Total: 45, Page: 2, Limit: 20, TotalPages: 3, HasNext: true, HasPrev: true}
	if got != want {
		t.Fatalf("Pagination() = %+v, want %+v", got, want)
	}

	empty := Page[int]{PageRequest: NewPageRequest(1, 20)}.Pagination()
	if empty.TotalPages != 0 || empty.HasNext || empty.HasPrev {
		t.Fatalf("unexpected empty pagination: %+v", empty)
	}
}

func TestUserPublicOmitsHash(t *testing.T) {
	u := &User{ID: 1, Email: "a@x.com", PasswordHash: "$2a$secret", Role: RoleUser}
	pub := u.Public()
	if pub.ID != 1 || pub.Email != "a@x.com" || pub.Role != RoleUser {
		t.Fatalf("unexpected projection: %+v", pub)
	}
}
