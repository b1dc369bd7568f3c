package version

// Version is the released version of the bootstrap helper.
const Version = "0.1.0"
