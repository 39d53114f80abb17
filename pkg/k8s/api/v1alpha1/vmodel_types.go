/*
Copyright 2023 The Hedgehog Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/


package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// NOTE: json tags are required.  Any new fields you add must have json tags for the fields to be serialized.

// VModelConfig holds the per phase configuration of a vendor model instance
type VModelConfig struct {
	Firmware *bool                `json:"firmware,omitempty"`
	BMC      runtime.RawExtension `json:"bmc,omitempty"`
	RAID     runtime.RawExtension `json:"raid,omitempty"`
	BIOS     runtime.RawExtension `json:"bios,omitempty"`
}

// VModelSpec defines the template and the configuration of a vendor model instance
type VModelSpec struct {
	Template string       `json:"template"`
	Label    string       `json:"label"`
	Config   VModelConfig `json:"config,omitempty"`
}

// VModelTransition is one entry of the audit log
type VModelTransition struct {
	Seq       uint64 `json:"seq"`
	OldState  string `json:"oldState"`
	State     string `json:"state"`
	Action    string `json:"action"`
	Method    string `json:"method"`
	NodeUUID  string `json:"nodeUUID,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Result    string `json:"result,omitempty"`
}

// VModelStatus is the workflow state of a vendor model instance. The provisioner is its only writer.
type VModelStatus struct {
	CurrentState string             `json:"currentState,omitempty"`
	FinalState   string             `json:"finalState,omitempty"`
	Counter      int                `json:"counter,omitempty"`
	Created      int64              `json:"created,omitempty"`
	Log          []VModelTransition `json:"log,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:resource:categories=hedgehog;provisioner,shortName=vm
// +kubebuilder:printcolumn:name="Template",type=string,JSONPath=`.spec.template`,priority=0
// +kubebuilder:printcolumn:name="Label",type=string,JSONPath=`.spec.label`,priority=0
// +kubebuilder:printcolumn:name="State",type=string,JSONPath=`.status.currentState`,priority=0
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`,priority=0
// VModel is a vendor model instance which walks a bare metal server through its hardware configuration
type VModel struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   VModelSpec   `json:"spec,omitempty"`
	Status VModelStatus `json:"status,omitempty"`
}

const KindVModel = "VModel"

//+kubebuilder:object:root=true

// VModelList contains a list of VModel
type VModelList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []VModel `json:"items"`
}

func init() {
	SchemeBuilder.Register(&VModel{}, &VModelList{})
}
