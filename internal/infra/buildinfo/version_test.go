package buildinfo

import (
	"encoding/json"
	"testing"
)

func TestGet_CarriesLdflagsValues(t *testing.T) {
	info := Get()

	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if info.Commit != Commit {
		t.Errorf("Commit = %q, want %q", info.Commit, Commit)
	}
	if info.BuildTime != BuildTime {
		t.Errorf("BuildTime = %q, want %q", info.BuildTime, BuildTime)
	}
	if info.GoVersion != GoVersion {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, GoVersion)
	}
}

func TestString_Format(t *testing.T) {
	want := Version + " (" + Commit + ") built at " + BuildTime
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestInfo_JSONKeys(t *testing.T) {
	data, err := json.Marshal(Get())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"version", "commit", "build_time", "go_version"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("serialized Info is missing key %q", key)
		}
	}
}

func TestDefaults(t *testing.T) {
	// An un-ldflagged binary still reports something usable.
	if Version == "" || Commit == "" || BuildTime == "" || GoVersion == "" {
		t.Error("default build values must not be empty")
	}
}
