package controllers

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"go.githedgehog.com/provisioner/pkg/store"
	"go.githedgehog.com/provisioner/test/mock/mockcontrollers"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	provisionerv1alpha1 "go.githedgehog.com/provisioner/pkg/k8s/api/v1alpha1"
)

var testNow = time.Unix(1700000000, 0)

func newVModelTimeoutReconciler(e Expirer, objs ...*provisionerv1alpha1.VModel) *VModelTimeoutReconciler {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(provisionerv1alpha1.AddToScheme(scheme))

	b := fake.NewClientBuilder().WithScheme(scheme)
	for _, o := range objs {
		b = b.WithObjects(o)
	}
	return &VModelTimeoutReconciler{
		Client:  b.Build(),
		Scheme:  scheme,
		Expirer: e,
		Clock:   func() time.Time { return testNow },
	}
}

func testObject(state string) *provisionerv1alpha1.VModel {
	return &provisionerv1alpha1.VModel{
		ObjectMeta: metav1.ObjectMeta{Name: "vm1", Namespace: "default"},
		Spec:       provisionerv1alpha1.VModelSpec{Template: "hp generic", Label: "rack 1"},
		Status:     provisionerv1alpha1.VModelStatus{CurrentState: state, FinalState: "vmodel_complete"},
	}
}

func TestVModelTimeoutReconciler_Reconcile(t *testing.T) {
	req := ctrl.Request{NamespacedName: types.NamespacedName{Name: "vm1", Namespace: "default"}}
	tests := []struct {
		name    string
		objs    []*provisionerv1alpha1.VModel
		pre     func(t *testing.T, e *mockcontrollers.MockExpirer)
		want    ctrl.Result
		wantErr bool
	}{
		{
			name: "requeue until the state expires",
			objs: []*provisionerv1alpha1.VModel{testObject("raid")},
			pre: func(t *testing.T, e *mockcontrollers.MockExpirer) {
				e.EXPECT().Expire(gomock.Any(), "vm1", testNow).Return(42*time.Minute, false, nil)
			},
			want: ctrl.Result{RequeueAfter: 42 * time.Minute},
		},
		{
			name: "fired into a state without timeout",
			objs: []*provisionerv1alpha1.VModel{testObject("raid")},
			pre: func(t *testing.T, e *mockcontrollers.MockExpirer) {
				e.EXPECT().Expire(gomock.Any(), "vm1", testNow).Return(time.Duration(0), true, nil)
			},
			want: ctrl.Result{},
		},
		{
			name: "complete instances are ignored",
			objs: []*provisionerv1alpha1.VModel{testObject("vmodel_complete")},
			want: ctrl.Result{},
		},
		{
			name: "deleted object",
			want: ctrl.Result{},
		},
		{
			name: "instance removed in between",
			objs: []*provisionerv1alpha1.VModel{testObject("raid")},
			pre: func(t *testing.T, e *mockcontrollers.MockExpirer) {
				e.EXPECT().Expire(gomock.Any(), "vm1", testNow).Return(time.Duration(0), false, store.NotFoundError("vmodel", "vm1"))
			},
			want: ctrl.Result{},
		},
		{
			name: "expire failure",
			objs: []*provisionerv1alpha1.VModel{testObject("raid")},
			pre: func(t *testing.T, e *mockcontrollers.MockExpirer) {
				e.EXPECT().Expire(gomock.Any(), "vm1", testNow).Return(time.Duration(0), false, errors.New("conflict"))
			},
			want:    ctrl.Result{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			e := mockcontrollers.NewMockExpirer(ctrl)
			r := newVModelTimeoutReconciler(e, tt.objs...)
			if tt.pre != nil {
				tt.pre(t, e)
			}
			got, err := r.Reconcile(ctx, req)
			if (err != nil) != tt.wantErr {
				t.Errorf("VModelTimeoutReconciler.Reconcile() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("VModelTimeoutReconciler.Reconcile() = %v, want %v", got, tt.want)
			}
		})
	}
}
