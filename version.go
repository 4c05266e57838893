package mython

// Version is the interpreter version the CLI reports.
const Version = "0.1.0"
