package db

// Translate exposes translate to the external test package.
var Translate = translate
