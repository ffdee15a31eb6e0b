package services

import (
	"testing"

	"github.com/storyloft/storyloft-backend/internal/types"
)

func completedPurchase(pkg string) *types.UserPurchase {
	return &types.UserPurchase{Package: pkg, Status: types.PurchaseStatusCompleted}
}

func TestUnlockedPhases(t *testing.T) {
	cases := []struct {
		name      string
		profile   *types.AuthorProfile
		purchases []*types.UserPurchase
		want      []int
	}{
		{
			name:    "regular author, no purchases",
			profile: &types.AuthorProfile{Role: types.RoleAuthor},
			want:    []int{1, 2, 3},
		},
		{
			name:      "publishing package",
			profile:   &types.AuthorProfile{Role: types.RoleAuthor},
			purchases: []*types.UserPurchase{completedPurchase(types.PackagePublishing)},
			want:      []int{1, 2, 3, 4},
		},
		{
			name:      "marketing package",
			profile:   &types.AuthorProfile{Role: types.RoleAuthor},
			purchases: []*types.UserPurchase{completedPurchase(types.PackageMarketing)},
			want:      []int{1, 2, 3, 5},
		},
		{
			name:      "complete package",
			profile:   &types.AuthorProfile{Role: types.RoleAuthor},
			purchases: []*types.UserPurchase{completedPurchase(types.PackageComplete)},
			want:      []int{1, 2, 3, 4, 5},
		},
		{
			name:    "pending purchase unlocks nothing",
			profile: &types.AuthorProfile{Role: types.RoleAuthor},
			purchases: []*types.UserPurchase{
				{Package: types.PackageComplete, Status: types.PurchaseStatusPending},
			},
			want: []int{1, 2, 3},
		},
		{
			name:    "admin sees everything",
			profile: &types.AuthorProfile{Role: types.RoleAdmin},
			want:    []int{1, 2, 3, 4, 5},
		},
		{
			name:    "super admin sees everything",
			profile: &types.AuthorProfile{Role: types.RoleSuperAdmin},
			want:    []int{1, 2, 3, 4, 5},
		},
		{
			name:    "beta tester sees everything",
			profile: &types.AuthorProfile{Role: types.RoleAuthor, IsBetaTester: true},
			want:    []int{1, 2, 3, 4, 5},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := UnlockedPhases(tc.profile, tc.purchases)
			if len(got) != len(tc.want) {
				t.Fatalf("want=%v got=%v", tc.want, got)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("want=%v got=%v", tc.want, got)
				}
			}
		})
	}
}

func TestUnlockedPhasesNilProfile(t *testing.T) {
	if got := UnlockedPhases(nil, nil); got != nil {
		t.Fatalf("want=nil got=%v", got)
	}
}
