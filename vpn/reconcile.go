package vpn

import (
	"context"

	"github.com/yllada/wireguard-gui/common"
)

// Reconciler computes the initial state from the marker file and the
// observed link status. It runs once at process start.
type Reconciler struct {
	Marker   *Marker
	Prober   common.LinkProber
	Resolver common.IPResolver
	// Recorder is optional.
	Recorder Recorder
}

// Reconcile adopts the persisted profile when its link is up. A marker
// naming a link that is down is stale and gets removed. The public IP is
// refreshed regardless of the outcome.
func (r *Reconciler) Reconcile(ctx context.Context) State {
	state := disconnectedState("")

	name, ok, err := r.Marker.Read()
	if err != nil {
		common.LogWarn("Could not read marker, starting disconnected: %v", err)
	}

	if ok {
		up, err := r.Prober.LinkUp(ctx, name)
		if err != nil {
			common.LogWarn("Link status for %s unavailable, treating as down: %v", name, err)
		}
		if up {
			common.LogInfo("Restored active profile %s", name)
			state = connectedState(name, "")
		} else {
			common.LogInfo("Marker names %s but its link is down; clearing it", name)
			if err := r.Marker.Remove(); err != nil {
				common.LogWarn("Ignoring failed stale marker removal: %v", err)
			}
		}
	}

	ip, err := lookupPublicIP(ctx, r.Resolver)
	if err != nil {
		common.LogWarn("Public IP refresh failed: %v", err)
		ip = ""
	}
	state.PublicIP = ip

	if ok && r.Recorder != nil {
		t := Transition{Kind: TransitionReconcile, Profile: state.ActiveProfile, From: name, PublicIP: ip}
		if err := r.Recorder.RecordTransition(ctx, t); err != nil {
			common.LogWarn("Could not record reconcile: %v", err)
		}
	}
	return state
}
