package geometry

// Tolerance is the comparison threshold for coordinates written as float32
// literals.
const Tolerance = 1e-6
