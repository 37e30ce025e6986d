package blackcore

// Exact mathematical constants used by the normalised Black evaluator and
// root finder, carried to full float64 precision.
const (
	sqrtPiOverTwo               = 1.2533141373155003 // sqrt(pi/2)
	sqrtTwoPi                   = 2.5066282746310002 // sqrt(2*pi)
	sqrtThree                   = 1.7320508075688772
	sqrtTwoOverPi               = 0.7978845608028654
	oneOverSqrtThree            = 0.5773502691896258
	twoPiOverSqrtTwentySeven    = 1.2092803256332469 // 2*pi/sqrt(27)
	sqrtThreeOverCubeRootTwoPi  = 0.9386064840210318 // sqrt(3)/(2*pi)^(1/3)
	sixteenthRootDblEpsilon     = 0.10511205190671433
	sqrtDblMax                  = 1.3407807929942596e+154
	fracOneOverSqrtTwoPi        = 0.3989422804014327
	halfOfLnTwoPi               = 0.9189385332046727
	fracOneOverSqrt2            = 0.70710678118654752440
	tau                         = 2.0 * sixteenthRootDblEpsilon
)
