package cameras

// Deterministic reference cameras with fixed, documented intrinsics.
// They exist so that tests and examples across packages agree on one
// calibration without shipping calibration files.

// NewReferencePinhole returns a 752x480 distortion-free pinhole camera
// with fu=458.654, fv=457.296, cu=367.215, cv=248.375.
func NewReferencePinhole() *PinholeCamera[*NoDistortion] {
	return &PinholeCamera[*NoDistortion]{
		width: 752, height: 480,
		fu: 458.654, fv: 457.296, cu: 367.215, cv: 248.375,
		distortion: &NoDistortion{},
	}
}

// NewReferencePinholeRadialTangential returns the reference pinhole
// camera with Brown-Conrady coefficients k1=-0.28340811, k2=0.07395907,
// k3=0, p1=0.00019359, p2=1.76187114e-05.
func NewReferencePinholeRadialTangential() *PinholeCamera[*RadialTangentialDistortion] {
	return &PinholeCamera[*RadialTangentialDistortion]{
		width: 752, height: 480,
		fu: 458.654, fv: 457.296, cu: 367.215, cv: 248.375,
		distortion: &RadialTangentialDistortion{
			RadialK1:     -0.28340811,
			RadialK2:     0.07395907,
			RadialK3:     0,
			TangentialP1: 0.00019359,
			TangentialP2: 1.76187114e-05,
		},
	}
}

// NewReferencePinholeEquidistant returns a 752x480 fisheye camera with
// fu=350.6, fv=350.9, cu=377.9, cv=238.7 and equidistant coefficients
// k1=-0.0086, k2=0.0241, k3=-0.0430, k4=0.0311.
func NewReferencePinholeEquidistant() *PinholeCamera[*EquidistantDistortion] {
	return &PinholeCamera[*EquidistantDistortion]{
		width: 752, height: 480,
		fu: 350.6, fv: 350.9, cu: 377.9, cv: 238.7,
		distortion: &EquidistantDistortion{
			K1: -0.0086,
			K2: 0.0241,
			K3: -0.0430,
			K4: 0.0311,
		},
	}
}
