package datapath

var (
	DeriveControlSignals = deriveControlSignals
	DeriveALUControl     = deriveALUControl
)
