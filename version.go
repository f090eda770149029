package gambit

// Version is the released version of the module and the gambit binary.
const Version = "0.4.0"
