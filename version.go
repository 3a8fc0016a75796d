package numfu

// Version is the interpreter release, reported by `numfu version` and in
// the REPL banner.
const Version = "0.5.0"
