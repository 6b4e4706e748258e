// Package output writes the files snaptail generates and serializes values
// for display.
//
//   - Writers (writer.go): Output destinations via the [Writer] interface,
//     with [StdoutWriter] and [FileWriter] implementations. The scaffolder
//     uses [FileWriter] for the entry module and the API shim.
//
//   - Serialization (serializer.go): YAML or JSON rendering of arbitrary
//     values, used by the config and version commands.
package output
