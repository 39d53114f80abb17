package vmodel_test

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"go.githedgehog.com/provisioner/pkg/vmodel"
	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts"
	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts/embedded"
	"go.githedgehog.com/provisioner/pkg/vmodel/fsm"
	"go.githedgehog.com/provisioner/test/mock/mockvmodel"
)

var testClock = func() time.Time { return time.Unix(1700000000, 0) }

func newHP(t *testing.T, ctrl *gomock.Controller) (vmodel.Template, *mockvmodel.MockArtifactResolver, *mockvmodel.MockBootOrchestrator) {
	t.Helper()
	r := mockvmodel.NewMockArtifactResolver(ctrl)
	b := mockvmodel.NewMockBootOrchestrator(ctrl)
	return vmodel.NewHPGeneric(vmodel.Services{Artifacts: r, Boot: b, Clock: testClock}), r, b
}

func idleNode() *vmodel.Node {
	return &vmodel.Node{UUID: "node1", LastState: vmodel.NodeStateIdle, Attributes: map[string]string{"productname": "ProLiant DL380 Gen9"}}
}

func boolPtr(b bool) *bool { return &b }

func TestHPGeneric_fullWalk(t *testing.T) {
	ctrl := gomock.NewController(t)
	tmpl, _, _ := newHP(t, ctrl)
	vm := tmpl.New("vm1", "rack 1", vmodel.Config{})
	call := vmodel.Call{Node: idleNode(), PolicyID: "p1"}

	steps := [][2]string{
		{"firmware", "start"}, {"firmware", "end"},
		{"ilo", "start"}, {"ilo", "end"},
		{"raid", "start"}, {"raid", "end"},
		{"bios", "start"}, {"bios", "end"},
	}
	for _, s := range steps {
		got, err := tmpl.Dispatch(context.Background(), vm, call, s[0], []string{s[1]})
		if err != nil {
			t.Fatalf("Dispatch(%s/%s) = %v", s[0], s[1], err)
		}
		if got != "ok" {
			t.Fatalf("Dispatch(%s/%s) = %s, want ok", s[0], s[1], got)
		}
	}

	if vm.CurrentState != "vmodel_complete" || !vm.Complete() {
		t.Errorf("state = %s, want vmodel_complete", vm.CurrentState)
	}
	wantActions := []fsm.Action{"firmware_start", "firmware_end", "ilo_start", "ilo_end", "raid_start", "raid_end", "bios_start", "bios_end"}
	if len(vm.Log) != len(wantActions) {
		t.Fatalf("log has %d records, want %d", len(vm.Log), len(wantActions))
	}
	for i, rec := range vm.Log {
		if rec.Action != wantActions[i] || rec.Seq != uint64(i+1) || rec.NodeUUID != "node1" {
			t.Errorf("record %d = %+v, want action %s", i, rec, wantActions[i])
		}
		if i > 0 && rec.OldState != vm.Log[i-1].State {
			t.Errorf("record %d old state %s does not follow %s", i, rec.OldState, vm.Log[i-1].State)
		}
	}
}

func TestPhasedFSM_Dispatch(t *testing.T) {
	type args struct {
		namespace string
		args      []string
		call      vmodel.Call
	}
	tests := []struct {
		name      string
		state     fsm.State
		args      args
		pre       func(t *testing.T, ctrl *gomock.Controller, r *mockvmodel.MockArtifactResolver)
		want      string
		wantErr   error
		wantState fsm.State
		wantLog   []fsm.Action
	}{
		{
			name:      "start from the initial state",
			state:     "vmodel_init",
			args:      args{namespace: "firmware", args: []string{"start"}, call: vmodel.Call{Node: idleNode()}},
			want:      "ok",
			wantState: "firmware",
			wantLog:   []fsm.Action{"firmware_start"},
		},
		{
			name:      "bmc is an alias of ilo",
			state:     "ilo",
			args:      args{namespace: "bmc", args: []string{"skip"}, call: vmodel.Call{Node: idleNode()}},
			want:      "ok",
			wantState: "raid",
			wantLog:   []fsm.Action{"ilo_skip"},
		},
		{
			name:      "no bound node does not change the state",
			state:     "vmodel_init",
			args:      args{namespace: "firmware", args: []string{"start"}},
			want:      "ok",
			wantState: "vmodel_init",
			wantLog:   []fsm.Action{"firmware_start"},
		},
		{
			name:    "unknown namespace",
			state:   "vmodel_init",
			args:    args{namespace: "nic", args: []string{"start"}, call: vmodel.Call{Node: idleNode()}},
			wantErr: vmodel.ErrUnknownNamespace,
		},
		{
			name:      "unknown sub action",
			state:     "firmware",
			args:      args{namespace: "firmware", args: []string{"reboot"}, call: vmodel.Call{Node: idleNode()}},
			want:      "error",
			wantState: "firmware",
		},
		{
			name:      "no sub action",
			state:     "firmware",
			args:      args{namespace: "firmware", call: vmodel.Call{Node: idleNode()}},
			want:      "error",
			wantState: "firmware",
		},
		{
			name:      "script without name",
			state:     "firmware",
			args:      args{namespace: "firmware", args: []string{"script"}, call: vmodel.Call{Node: idleNode()}},
			want:      "error: request script without file name",
			wantState: "firmware",
		},
		{
			name:  "script is resolved for the product and rendered",
			state: "raid",
			args: args{
				namespace: "raid",
				args:      []string{"script", "ignored", "raidconf.sh"},
				call:      vmodel.Call{Node: idleNode(), PolicyID: "p1", BaseURL: "http://prov:8080/"},
			},
			pre: func(t *testing.T, ctrl *gomock.Controller, r *mockvmodel.MockArtifactResolver) {
				r.EXPECT().Resolve("hp", "ProLiant DL380 Gen9", "raidconf.sh").Times(1).Return(&artifacts.Artifact{
					Name:    "raidconf.sh",
					Path:    "hp/raidconf.sh.tmpl",
					Content: []byte(`{{ .Metadata.node_uuid }} {{ index .Config "level" }} {{ .Enabled }} {{ callback "raid" "end" }} {{ artifact "raid" "acu-e.ini" }}`),
				}, nil)
			},
			want:      "node1 raid5 true http://prov:8080/policy/callback/p1/raid/end http://prov:8080/policy/callback/p1/raid/script/acu-e.ini",
			wantState: "raid",
			wantLog:   []fsm.Action{"raid_script"},
		},
		{
			name:  "artifact not found",
			state: "raid",
			args:  args{namespace: "raid", args: []string{"script", "missing.sh"}, call: vmodel.Call{Node: idleNode()}},
			pre: func(t *testing.T, ctrl *gomock.Controller, r *mockvmodel.MockArtifactResolver) {
				r.EXPECT().Resolve("hp", "ProLiant DL380 Gen9", "missing.sh").Times(1).Return(nil, artifacts.ErrArtifactNotFound)
			},
			wantErr:   artifacts.ErrArtifactNotFound,
			wantState: "raid",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			tmpl, r, _ := newHP(t, ctrl)
			if tt.pre != nil {
				tt.pre(t, ctrl, r)
			}
			vm := tmpl.New("vm1", "", vmodel.Config{RAID: map[string]any{"enabled": "true", "level": "raid5"}})
			vm.CurrentState = tt.state

			got, err := tmpl.Dispatch(context.Background(), vm, tt.args.call, tt.args.namespace, tt.args.args)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Dispatch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if len(vm.Log) != 0 {
					t.Errorf("Dispatch() logged %d records on error", len(vm.Log))
				}
				return
			}
			if got != tt.want {
				t.Errorf("Dispatch() = %q, want %q", got, tt.want)
			}
			if vm.CurrentState != tt.wantState {
				t.Errorf("state = %s, want %s", vm.CurrentState, tt.wantState)
			}
			var gotLog []fsm.Action
			for _, rec := range vm.Log {
				gotLog = append(gotLog, rec.Action)
			}
			if !reflect.DeepEqual(gotLog, tt.wantLog) {
				t.Errorf("log = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestPhasedFSM_MkCall(t *testing.T) {
	tests := []struct {
		name        string
		state       fsm.State
		node        *vmodel.Node
		want        *vmodel.MkCallReply
		wantErr     error
		wantState   fsm.State
		wantCounter int
	}{
		{
			name:      "busy node is acknowledged",
			state:     "vmodel_init",
			node:      &vmodel.Node{UUID: "node1", LastState: "firmware"},
			want:      vmodel.Acknowledged(),
			wantState: "vmodel_init",
		},
		{
			name:  "initial state bootstraps into the first phase",
			state: "vmodel_init",
			node:  idleNode(),
			want: &vmodel.MkCallReply{Action: "firmware", Params: map[string]any{
				"enabled": true,
				"script":  []string{"hpsum.sh"},
			}},
			wantState:   "firmware",
			wantCounter: 1,
		},
		{
			name:  "phase state replies without a transition",
			state: "raid",
			node:  idleNode(),
			want: &vmodel.MkCallReply{Action: "raid", Params: map[string]any{
				"enabled": false,
				"script":  []string{"raidconf.sh", "acu-e.ini", "cloud-raid.ini", "default-raid.ini"},
			}},
			wantState: "raid",
		},
		{
			name:  "unset enable flag",
			state: "bios",
			node:  idleNode(),
			want: &vmodel.MkCallReply{Action: "bios", Params: map[string]any{
				"enabled": nil,
				"script":  []string{"biosconf.sh", "biostemp.xml", "conrep.xml", "rebootconf.sh"},
			}},
			wantState: "bios",
		},
		{
			name:      "final state is acknowledged",
			state:     "vmodel_complete",
			node:      idleNode(),
			want:      vmodel.Acknowledged(),
			wantState: "vmodel_complete",
		},
		{
			name:      "error state is acknowledged",
			state:     "error_catch",
			node:      idleNode(),
			want:      vmodel.Acknowledged(),
			wantState: "error_catch",
		},
		{
			name:      "no node",
			state:     "vmodel_init",
			wantErr:   vmodel.ErrNoBoundNode,
			wantState: "vmodel_init",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			tmpl, _, _ := newHP(t, ctrl)
			vm := tmpl.New("vm1", "", vmodel.Config{Firmware: boolPtr(true), RAID: map[string]any{"enabled": false}})
			vm.CurrentState = tt.state

			got, err := tmpl.MkCall(context.Background(), vm, vmodel.Call{Node: tt.node, PolicyID: "p1"})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("MkCall() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MkCall() = %#v, want %#v", got, tt.want)
			}
			if vm.CurrentState != tt.wantState {
				t.Errorf("state = %s, want %s", vm.CurrentState, tt.wantState)
			}
			if vm.Counter != tt.wantCounter {
				t.Errorf("counter = %d, want %d", vm.Counter, tt.wantCounter)
			}
		})
	}
}

func TestPhasedFSM_BootCall(t *testing.T) {
	tests := []struct {
		name    string
		pre     func(t *testing.T, ctrl *gomock.Controller, b *mockvmodel.MockBootOrchestrator)
		want    string
		wantErr bool
		wantLog int
	}{
		{
			name: "boot action is returned and logged",
			pre: func(t *testing.T, ctrl *gomock.Controller, b *mockvmodel.MockBootOrchestrator) {
				b.EXPECT().NextBoot(gomock.Any(), gomock.Any(), "p1").Times(1).Return("#!ipxe\n", nil)
			},
			want:    "#!ipxe\n",
			wantLog: 1,
		},
		{
			name: "orchestrator failure is not logged",
			pre: func(t *testing.T, ctrl *gomock.Controller, b *mockvmodel.MockBootOrchestrator) {
				b.EXPECT().NextBoot(gomock.Any(), gomock.Any(), "p1").Times(1).Return("", fmt.Errorf("no image"))
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			tmpl, _, b := newHP(t, ctrl)
			tt.pre(t, ctrl, b)
			vm := tmpl.New("vm1", "", vmodel.Config{})
			vm.CurrentState = "raid"

			got, err := tmpl.BootCall(context.Background(), vm, vmodel.Call{Node: idleNode(), PolicyID: "p1"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("BootCall() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("BootCall() = %q, want %q", got, tt.want)
			}
			if len(vm.Log) != tt.wantLog {
				t.Errorf("log has %d records, want %d", len(vm.Log), tt.wantLog)
			}
			if vm.CurrentState != "raid" {
				t.Errorf("state = %s, want raid", vm.CurrentState)
			}
		})
	}
}

func TestTemplate_TimeoutAction(t *testing.T) {
	cat := vmodel.NewCatalog(vmodel.Services{})
	tests := []struct {
		template string
		state    fsm.State
		want     fsm.Action
		wantOK   bool
	}{
		{vmodel.TemplateHPGeneric, "vmodel_init", "timeout", true},
		{vmodel.TemplateHPGeneric, "ilo", "ilo_timeout", true},
		{vmodel.TemplateHuaweiGeneric, "bmc", "bmc_timeout", true},
		{vmodel.TemplateHPGeneric, "vmodel_complete", "", false},
		{vmodel.TemplateHPGeneric, "timeout_error", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.template+"/"+string(tt.state), func(t *testing.T) {
			tmpl, err := cat.Get(tt.template)
			if err != nil {
				t.Fatal(err)
			}
			got, ok := tmpl.TimeoutAction(tt.state)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("TimeoutAction() = %s, %v, want %s, %v", got, ok, tt.want, tt.wantOK)
			}
			if ok {
				next, err := tmpl.Definition().Lookup(tt.state, got)
				if err != nil || next != tmpl.Definition().TimeoutState {
					t.Errorf("Lookup(%s, %s) = %s, %v", tt.state, got, next, err)
				}
			}
		})
	}
}

func TestCatalog(t *testing.T) {
	cat := vmodel.NewCatalog(vmodel.Services{})
	var names []string
	for _, tmpl := range cat.List() {
		names = append(names, tmpl.Name())
	}
	if want := []string{"hp generic", "hp generic v2", "huawei generic"}; !reflect.DeepEqual(names, want) {
		t.Errorf("List() = %v, want %v", names, want)
	}
	if _, err := cat.Get("dell generic"); !errors.Is(err, vmodel.ErrUnknownTemplate) {
		t.Errorf("Get() error = %v, want %v", err, vmodel.ErrUnknownTemplate)
	}
	v2, _ := cat.Get(vmodel.TemplateHPGenericV2)
	var keys []string
	for _, f := range v2.Metadata() {
		keys = append(keys, f.Key)
	}
	if want := []string{"firmware", "raid", "bmc", "bios"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("Metadata() keys = %v, want %v", keys, want)
	}
}

// every artifact a phase announces must be available from the embedded provider
func TestBuiltinArtifactsAreEmbedded(t *testing.T) {
	r := artifacts.NewResolver(embedded.Provider(), artifacts.DefaultExtension)
	for _, tmpl := range vmodel.NewCatalog(vmodel.Services{}).List() {
		def := tmpl.Definition()
		for _, s := range def.Table().States() {
			for _, name := range def.Artifacts(s) {
				if _, err := r.Resolve(def.Vendor, "", name); err != nil {
					t.Errorf("%s: state %s: %v", tmpl.Name(), s, err)
				}
			}
		}
	}
}

// the embedded scripts must render for every variant, including the `file` verb of hp generic v2
func TestBuiltinArtifactsRender(t *testing.T) {
	svc := vmodel.Services{
		Artifacts: artifacts.NewResolver(embedded.Provider(), artifacts.DefaultExtension),
		Clock:     testClock,
	}
	cfg := vmodel.Config{
		Firmware: boolPtr(true),
		BMC:      map[string]any{"enabled": true, "address": "10.0.0.5"},
		RAID:     map[string]any{"enabled": true, "level": "raid10"},
		BIOS:     map[string]any{"enabled": true},
	}
	for _, tmpl := range vmodel.NewCatalog(svc).List() {
		verb := vmodel.SubActionScript
		if tmpl.Name() == vmodel.TemplateHPGenericV2 {
			verb = vmodel.SubActionFile
		}
		def := tmpl.Definition()
		for _, s := range def.Table().States() {
			for _, name := range def.Artifacts(s) {
				vm := tmpl.New("vm1", "", cfg)
				vm.CurrentState = s
				call := vmodel.Call{Node: idleNode(), PolicyID: "p1", BaseURL: "http://prov"}
				got, err := tmpl.Dispatch(context.Background(), vm, call, string(s), []string{verb, name})
				if err != nil {
					t.Errorf("%s: %s/%s: %v", tmpl.Name(), s, name, err)
					continue
				}
				if strings.Contains(got, "<no value>") {
					t.Errorf("%s: %s/%s renders missing values:\n%s", tmpl.Name(), s, name, got)
				}
				if strings.Contains(got, "/script/") && verb == vmodel.SubActionFile {
					t.Errorf("%s: %s/%s refers to the script verb:\n%s", tmpl.Name(), s, name, got)
				}
			}
		}
	}
}

func TestBuiltinXMLArtifactsEscapeValues(t *testing.T) {
	svc := vmodel.Services{
		Artifacts: artifacts.NewResolver(embedded.Provider(), artifacts.DefaultExtension),
		Clock:     testClock,
	}
	hostile := `a"b&c<d>'e`
	cfg := vmodel.Config{
		BMC:  map[string]any{"enabled": true, "address": hostile, "user": hostile, "password": hostile},
		BIOS: map[string]any{"enabled": true, "boot_mode": hostile, "hyperthreading": hostile, "power_profile": hostile},
	}
	for _, tmpl := range vmodel.NewCatalog(svc).List() {
		verb := vmodel.SubActionScript
		if tmpl.Name() == vmodel.TemplateHPGenericV2 {
			verb = vmodel.SubActionFile
		}
		def := tmpl.Definition()
		for _, s := range def.Table().States() {
			for _, name := range def.Artifacts(s) {
				if !strings.HasSuffix(name, ".xml") {
					continue
				}
				t.Run(fmt.Sprintf("%s/%s/%s", tmpl.Name(), s, name), func(t *testing.T) {
					vm := tmpl.New("vm1", "", cfg)
					vm.CurrentState = s
					call := vmodel.Call{Node: idleNode(), PolicyID: "p1", BaseURL: "http://prov"}
					got, err := tmpl.Dispatch(context.Background(), vm, call, string(s), []string{verb, name})
					if err != nil {
						t.Fatal(err)
					}
					d := xml.NewDecoder(strings.NewReader(got))
					for {
						_, err := d.Token()
						if errors.Is(err, io.EOF) {
							break
						}
						if err != nil {
							t.Fatalf("rendered artifact is not well formed: %v\n%s", err, got)
						}
					}
					if strings.Contains(got, hostile) {
						t.Errorf("rendered artifact carries the unescaped value:\n%s", got)
					}
				})
			}
		}
	}
}

func TestNodeMetadataAndCallbackURL(t *testing.T) {
	tmpl := vmodel.NewHPGeneric(vmodel.Services{Clock: testClock})
	vm := tmpl.New("vm1", "rack 1", vmodel.Config{})
	vm.Counter = 2
	node := idleNode()
	node.Tags = []string{"hp", "gen9"}
	got := vmodel.NodeMetadata(vm, tmpl, vmodel.Call{Node: node, PolicyID: "p1"})
	want := map[string]string{
		"policy_uuid":        "p1",
		"vmodel_uuid":        "vm1",
		"vmodel_label":       "rack 1",
		"vmodel_name":        "hp generic",
		"vmodel_description": "HP Generic Vendor Model",
		"vmodel_template":    "hp generic",
		"policy_count":       "2",
		"node_uuid":          "node1",
		"tags":               "hp,gen9",
		"productname":        "ProLiant DL380 Gen9",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NodeMetadata() = %v, want %v", got, want)
	}
	if u := vmodel.CallbackURL("http://prov/", "p 1", "raid", "script", "a.ini"); u != "http://prov/policy/callback/p%201/raid/script/a.ini" {
		t.Errorf("CallbackURL() = %s", u)
	}
	if vm.Created != testClock().Unix() {
		t.Errorf("Created = %d", vm.Created)
	}
}
