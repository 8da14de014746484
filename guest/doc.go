// Package guest owns the registry of guest code units and the reserved
// namespaces no guest may claim.
//
// A Registry is populated during a single-threaded configuration phase and then
// frozen. After Freeze, every mutation fails with errors.ErrFrozen and reads are
// safe for concurrent callers.
//
//	reg := guest.NewRegistry()
//	reg.ReserveDefaults()
//	if err := reg.Register("com.example.sandboxcore.Widget", payload); err != nil {
//	    return err
//	}
//	reg.Freeze()
package guest
