package controllers

import (
	"context"
	"errors"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	provisionerv1alpha1 "go.githedgehog.com/provisioner/pkg/k8s/api/v1alpha1"
	"go.githedgehog.com/provisioner/pkg/store"
)

// Expirer dispatches the timeout action of an instance whose state exceeded its maximum time
type Expirer interface {
	Expire(ctx context.Context, id string, now time.Time) (time.Duration, bool, error)
}

// VModelTimeoutReconciler is the timer of the vendor model workflow. It
// requeues every instance until its current state expires.
type VModelTimeoutReconciler struct {
	client.Client
	Scheme  *runtime.Scheme
	Expirer Expirer
	Clock   func() time.Time
}

//+kubebuilder:rbac:groups=provisioner.githedgehog.com,resources=vmodels,verbs=get;list;watch;create;update;patch;delete

// Reconcile checks the timeout of a single instance
func (r *VModelTimeoutReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	l := log.FromContext(ctx)

	obj := &provisionerv1alpha1.VModel{}
	if err := r.Get(ctx, req.NamespacedName, obj); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}
	if obj.Status.CurrentState != "" && obj.Status.CurrentState == obj.Status.FinalState {
		return ctrl.Result{}, nil
	}

	now := time.Now
	if r.Clock != nil {
		now = r.Clock
	}
	remaining, fired, err := r.Expirer.Expire(ctx, req.Name, now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ctrl.Result{}, nil
		}
		l.Error(err, "checking timeout", "vmodel", req.Name)
		return ctrl.Result{}, err
	}
	if fired {
		l.Info("state timed out", "vmodel", req.Name)
	}
	if remaining > 0 {
		return ctrl.Result{RequeueAfter: remaining}, nil
	}
	return ctrl.Result{}, nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *VModelTimeoutReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&provisionerv1alpha1.VModel{}).
		Complete(r)
}
