package handlers

import "net/http"

func (a *App) ListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := a.Repo.GetAllBranches(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, list(branches))
}

func (a *App) BranchInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	inv, err := a.Aggregator.InventoryByBranch(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, inv)
}

// Dashboard defaults to the caller's branch, then the configured branch.
func (a *App) Dashboard(w http.ResponseWriter, r *http.Request) {
	fallback := a.DefaultBranchID
	if staff := a.currentStaff(r); staff != nil {
		fallback = staff.BranchID
	}
	branchID, err := queryInt64(r, "branchId", fallback)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	snap, err := a.Reporter.Snapshot(r.Context(), branchID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, snap)
}
