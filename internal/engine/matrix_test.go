package engine

import (
	"testing"

	"github.com/andresuchdata/rebalancer/internal/domain"
)

func TestBuildProductMatrix_GroupsByProduct(t *testing.T) {
	outlets := []domain.Outlet{
		{ID: 1, Name: "North"},
		{ID: 2, Name: "South"},
	}
	inventories := map[int64][]*domain.InventoryItem{
		1: {
			{ProductID: "shared", InventoryLevel: 10, SupplyPrice: 4},
			{ProductID: "north-only", InventoryLevel: 3, SupplyPrice: 9},
		},
		2: {
			{ProductID: "shared", InventoryLevel: 80, SupplyPrice: 4},
		},
	}

	matrix := BuildProductMatrix(outlets, inventories)

	if len(matrix) != 2 {
		t.Fatalf("len(matrix) = %d, want 2", len(matrix))
	}

	shared := matrix["shared"]
	if shared == nil {
		t.Fatal("missing entry for shared product")
	}
	if len(shared.Outlets) != 2 {
		t.Errorf("shared product outlet count = %d, want 2", len(shared.Outlets))
	}
	if shared.Outlets[1].Item.InventoryLevel != 10 || shared.Outlets[2].Item.InventoryLevel != 80 {
		t.Error("outlet statuses carry the wrong items")
	}
	if shared.Outlets[2].Outlet.Name != "South" {
		t.Errorf("outlet back-reference = %q, want South", shared.Outlets[2].Outlet.Name)
	}

	northOnly := matrix["north-only"]
	if northOnly == nil || len(northOnly.Outlets) != 1 {
		t.Fatal("single-outlet product should have exactly one status")
	}
}

func TestBuildProductMatrix_FirstSeenSupplyPrice(t *testing.T) {
	outlets := []domain.Outlet{{ID: 1}, {ID: 2}}
	inventories := map[int64][]*domain.InventoryItem{
		1: {{ProductID: "p", SupplyPrice: 7.5, InventoryLevel: 1}},
		2: {{ProductID: "p", SupplyPrice: 9.0, InventoryLevel: 1}},
	}

	matrix := BuildProductMatrix(outlets, inventories)

	if got := matrix["p"].SupplyPrice; got != 7.5 {
		t.Errorf("SupplyPrice = %v, want first-seen 7.5", got)
	}
}

func TestBuildProductMatrix_Empty(t *testing.T) {
	matrix := BuildProductMatrix(nil, nil)
	if len(matrix) != 0 {
		t.Errorf("len(matrix) = %d, want 0", len(matrix))
	}
}
