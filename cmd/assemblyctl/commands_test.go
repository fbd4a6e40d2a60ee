package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCapsUsesFixedCapForSmallSites(t *testing.T) {
	out, err := execute(t, "caps", "--units", "10", "--land-share", "1000")

	require.NoError(t, err)
	assert.Contains(t, out, "max proxies per receiver: 2")
	assert.Contains(t, out, "max land share per receiver: 50.00")
}

func TestCapsUsesFivePercentAboveFortyUnits(t *testing.T) {
	out, err := execute(t, "caps", "--units", "120", "--land-share", "2400")

	require.NoError(t, err)
	assert.Contains(t, out, "max proxies per receiver: 6")
	assert.Contains(t, out, "max land share per receiver: 120.00")
}

func TestCapsRejectsMalformedLandShare(t *testing.T) {
	_, err := execute(t, "caps", "--units", "10", "--land-share", "abc")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--land-share")
}

func TestQuorumExactlyHalfFails(t *testing.T) {
	out, err := execute(t, "quorum",
		"--total-units", "10", "--attended-units", "5",
		"--total-land-share", "1000", "--attended-land-share", "600",
	)

	require.NoError(t, err)
	assert.Contains(t, out, "achieved: false")
	assert.Contains(t, out, "units: 50.0% (majority false)")
	assert.Contains(t, out, "land share: 60.0% (majority true)")
}

func TestQuorumBothMajorities(t *testing.T) {
	out, err := execute(t, "quorum",
		"--total-units", "10", "--attended-units", "6",
		"--total-land-share", "1000", "--attended-land-share", "600",
	)

	require.NoError(t, err)
	assert.Contains(t, out, "achieved: true")
}

func TestApproveRequiresStrictMajorityOfAttendees(t *testing.T) {
	out, err := execute(t, "approve",
		"--yes", "4", "--no", "2", "--yes-land-share", "600", "--no-land-share", "150",
		"--attended-units", "6", "--attended-land-share", "750",
	)
	require.NoError(t, err)
	assert.Equal(t, "approved\n", out)

	out, err = execute(t, "approve",
		"--yes", "3", "--no", "3", "--yes-land-share", "450", "--no-land-share", "300",
		"--attended-units", "6", "--attended-land-share", "750",
	)
	require.NoError(t, err)
	assert.Equal(t, "rejected\n", out)
}

func TestGatesRequiresMeetingID(t *testing.T) {
	_, err := execute(t, "gates")

	require.Error(t, err)
}

func TestRegisterSiteValidatesBeforeConnecting(t *testing.T) {
	_, err := execute(t, "register-site", "--name", "Lale", "--total-land-share", "1000")

	require.EqualError(t, err, "--id and --name are required")
}

func TestGatesRejectsUnknownOperationBeforeConnecting(t *testing.T) {
	_, err := execute(t, "gates", "meeting-1", "--operation", "delete_meeting")

	require.EqualError(t, err, `unknown operation "delete_meeting"`)
}

func TestRegisterUnitRejectsLandlinePhone(t *testing.T) {
	_, err := execute(t, "register-unit", "--id", "u1", "--site", "site-1", "--phone", "0212 555 44 33")

	require.EqualError(t, err, `--phone "0212 555 44 33" is not a mobile number`)
}
