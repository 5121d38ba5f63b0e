// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"reflect"
	"testing"
)

func TestValidMilestoneID(t *testing.T) {
	valid := []string{"M1", "M2", "M10", "M999"}
	for _, id := range valid {
		if !ValidMilestoneID(id) {
			t.Errorf("ValidMilestoneID(%q) = false, want true", id)
		}
	}
	invalid := []string{"", "M0", "M01", "m1", "M1-T1", "M", "M1x", "T1"}
	for _, id := range invalid {
		if ValidMilestoneID(id) {
			t.Errorf("ValidMilestoneID(%q) = true, want false", id)
		}
	}
}

func TestValidTaskID(t *testing.T) {
	valid := []string{"M1-T1", "M2-T10", "M10-T3"}
	for _, id := range valid {
		if !ValidTaskID(id) {
			t.Errorf("ValidTaskID(%q) = false, want true", id)
		}
	}
	invalid := []string{"", "M1", "M1-T0", "M0-T1", "M1-T01", "M1T1", "M1-t1", "M1-T1-T2"}
	for _, id := range invalid {
		if ValidTaskID(id) {
			t.Errorf("ValidTaskID(%q) = true, want false", id)
		}
	}
}

func TestMilestoneOfTask(t *testing.T) {
	mid, ok := MilestoneOfTask("M3-T7")
	if !ok || mid != "M3" {
		t.Errorf("MilestoneOfTask(M3-T7) = %q, %v", mid, ok)
	}
	if _, ok := MilestoneOfTask("M3"); ok {
		t.Error("MilestoneOfTask accepted a milestone ID")
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range []Status{StatusPlanned, StatusSpecified, StatusCoded} {
		if !s.IsValid() {
			t.Errorf("Status(%q).IsValid() = false", s)
		}
	}
	if Status("done").IsValid() {
		t.Error("Status(done).IsValid() = true")
	}
}

func TestAddMilestoneAndTask(t *testing.T) {
	p := NewProject()
	m, err := p.AddMilestone("M1", "first milestone")
	if err != nil {
		t.Fatalf("AddMilestone: %v", err)
	}
	if _, err := p.AddMilestone("M1", "dup"); err == nil {
		t.Error("duplicate milestone accepted")
	}
	if _, err := p.AddMilestone("bogus", "x"); err == nil {
		t.Error("malformed milestone ID accepted")
	}

	tk, err := m.AddTask("M1-T1", "first task")
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if tk.Status != StatusPlanned {
		t.Errorf("new task status = %q, want planned", tk.Status)
	}
	if _, err := m.AddTask("M1-T1", "dup"); err == nil {
		t.Error("duplicate task accepted")
	}
	if _, err := m.AddTask("M2-T1", "wrong milestone"); err == nil {
		t.Error("task under foreign milestone accepted")
	}
	if _, err := m.AddTask("nonsense", "x"); err == nil {
		t.Error("malformed task ID accepted")
	}
}

func TestTaskLookup(t *testing.T) {
	p := NewProject()
	m, _ := p.AddMilestone("M1", "m")
	m.AddTask("M1-T1", "t")

	if p.Task("M1-T1") == nil {
		t.Error("Task(M1-T1) = nil")
	}
	if p.Task("M1-T2") != nil {
		t.Error("Task(M1-T2) != nil for absent task")
	}
	if p.Task("M2-T1") != nil {
		t.Error("Task(M2-T1) != nil for absent milestone")
	}
	if p.Task("garbage") != nil {
		t.Error("Task(garbage) != nil")
	}
}

func TestEachTaskOrder(t *testing.T) {
	p := NewProject()
	m1, _ := p.AddMilestone("M1", "a")
	m1.AddTask("M1-T1", "")
	m1.AddTask("M1-T2", "")
	m2, _ := p.AddMilestone("M2", "b")
	m2.AddTask("M2-T1", "")

	var order []string
	p.EachTask(func(_ *Milestone, t *Task) bool {
		order = append(order, t.ID)
		return true
	})
	want := []string{"M1-T1", "M1-T2", "M2-T1"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("EachTask order = %v, want %v", order, want)
	}
}

func TestDirtyTasks(t *testing.T) {
	p := NewProject()
	m, _ := p.AddMilestone("M1", "")
	m.AddTask("M1-T1", "")
	t2, _ := m.AddTask("M1-T2", "")
	t2.Dirty = true

	if got := p.DirtyTasks(); !reflect.DeepEqual(got, []string{"M1-T2"}) {
		t.Errorf("DirtyTasks() = %v, want [M1-T2]", got)
	}
}
