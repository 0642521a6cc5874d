package rules

// IsCube exposes isCube to the external test package.
var IsCube = isCube
