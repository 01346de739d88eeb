package opengl

// displaceSrc offsets a vertex along its normal by the displacement map.
// Shared by the colour and depth vertex shaders.
const displaceSrc = `
uniform sampler2D displacementTex;
uniform bool  hasDisplacementTex;
uniform float displacementScale;
uniform float displacementBias;

vec3 displace(vec3 pos, vec3 normal, vec2 uv) {
    if (hasDisplacementTex) {
        float h = texture(displacementTex, uv).r;
        pos += normalize(normal) * (h * displacementScale + displacementBias);
    }
    return pos;
}
`

// Attribute locations follow the core.Vertex field order.
const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;
layout(location = 4) in vec3 inTangent;
layout(location = 5) in vec3 inBitangent;

uniform mat4 model;
uniform mat4 viewProj;
uniform mat3 normalMatrix;
uniform mat4 lightViewProj;
` + displaceSrc + `
out vec3 fragWorldPos;
out vec3 fragNormal;
out vec3 fragTangent;
out vec3 fragBitangent;
out vec2 fragUV;
out vec4 fragColor;
out vec4 fragLightSpacePos;

void main() {
    vec4 world = model * vec4(displace(inPosition, inNormal, inUV), 1.0);

    fragWorldPos      = world.xyz;
    fragNormal        = normalize(normalMatrix * inNormal);
    fragTangent       = normalize(normalMatrix * inTangent);
    fragBitangent     = normalize(normalMatrix * inBitangent);
    fragUV            = inUV;
    fragColor         = inColor;
    fragLightSpacePos = lightViewProj * world;

    gl_Position = viewProj * world;
}
` + "\x00"

const fragSrc = `
#version 410 core
in vec3 fragWorldPos;
in vec3 fragNormal;
in vec3 fragTangent;
in vec3 fragBitangent;
in vec2 fragUV;
in vec4 fragColor;
in vec4 fragLightSpacePos;

out vec4 outColor;

// Material
uniform vec4  matColor;
uniform float matMetalness;
uniform float matRoughness;
uniform float matOpacity;
uniform float aoMapIntensity;

// Maps. mapRepeat only applies to the colour map.
uniform sampler2D colorTex;      // unit 0
uniform sampler2D normalTex;     // unit 2
uniform sampler2D roughnessTex;  // unit 3 (G)
uniform sampler2D metalnessTex;  // unit 4 (B)
uniform sampler2D aoTex;         // unit 5 (R)
uniform bool hasColorTex;
uniform bool hasNormalTex;
uniform bool hasRoughnessTex;
uniform bool hasMetalnessTex;
uniform bool hasAOTex;
uniform vec2 mapRepeat;

// Lights
uniform vec3  ambientColor;      // colour * intensity, summed
uniform bool  hasDirLight;
uniform vec3  lightDir;          // direction the light travels
uniform vec3  lightColor;
uniform float lightIntensity;
uniform vec3  cameraPos;

// Shadows
uniform sampler2DShadow shadowMap; // unit 1
uniform bool  hasShadows;
uniform bool  receiveShadow;
uniform float shadowBias;

const float PI = 3.14159265359;

float distributionGGX(float NdotH, float roughness) {
    float a  = roughness * roughness;
    float a2 = a * a;
    float d  = NdotH * NdotH * (a2 - 1.0) + 1.0;
    return a2 / (PI * d * d);
}

float geometrySchlickGGX(float NdotX, float roughness) {
    float r = roughness + 1.0;
    float k = (r * r) / 8.0;
    return NdotX / (NdotX * (1.0 - k) + k);
}

vec3 fresnelSchlick(float cosTheta, vec3 F0) {
    return F0 + (1.0 - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

// 3x3 PCF over the hardware-compared shadow map.
float shadowFactor() {
    vec3 p = fragLightSpacePos.xyz / fragLightSpacePos.w;
    p = p * 0.5 + 0.5;
    if (p.z > 1.0) {
        return 1.0;
    }
    vec2 texel = 1.0 / vec2(textureSize(shadowMap, 0));
    float lit = 0.0;
    for (int x = -1; x <= 1; ++x) {
        for (int y = -1; y <= 1; ++y) {
            lit += texture(shadowMap, vec3(p.xy + vec2(x, y) * texel, p.z - shadowBias));
        }
    }
    return lit / 9.0;
}

void main() {
    vec4 base = matColor * fragColor;
    if (hasColorTex) {
        base *= texture(colorTex, fragUV * mapRepeat);
    }
    float alpha = base.a * matOpacity;

    float roughness = matRoughness;
    if (hasRoughnessTex) {
        roughness *= texture(roughnessTex, fragUV).g;
    }
    roughness = clamp(roughness, 0.04, 1.0);
    float metalness = matMetalness;
    if (hasMetalnessTex) {
        metalness *= texture(metalnessTex, fragUV).b;
    }
    float ao = 1.0;
    if (hasAOTex) {
        ao = (texture(aoTex, fragUV).r - 1.0) * aoMapIntensity + 1.0;
    }

    vec3 N = normalize(fragNormal);
    if (!gl_FrontFacing) {
        N = -N;
    }
    if (hasNormalTex) {
        mat3 TBN = mat3(normalize(fragTangent), normalize(fragBitangent), N);
        N = normalize(TBN * (texture(normalTex, fragUV).xyz * 2.0 - 1.0));
    }

    vec3 albedo = base.rgb;
    vec3 color = ambientColor * albedo * ao;

    if (hasDirLight) {
        vec3 V = normalize(cameraPos - fragWorldPos);
        vec3 L = normalize(-lightDir);
        vec3 H = normalize(V + L);
        float NdotL = max(dot(N, L), 0.0);
        float NdotV = max(dot(N, V), 1e-4);
        float NdotH = max(dot(N, H), 0.0);

        vec3 F0 = mix(vec3(0.04), albedo, metalness);
        vec3 F  = fresnelSchlick(max(dot(H, V), 0.0), F0);
        float D = distributionGGX(NdotH, roughness);
        float G = geometrySchlickGGX(NdotV, roughness) * geometrySchlickGGX(NdotL, roughness);
        vec3 specular = D * G * F / (4.0 * NdotV * NdotL + 1e-4);
        vec3 kD = (vec3(1.0) - F) * (1.0 - metalness);

        float shadow = 1.0;
        if (hasShadows && receiveShadow) {
            shadow = shadowFactor();
        }
        vec3 radiance = lightColor * lightIntensity * PI;
        color += (kD * albedo / PI + specular) * radiance * NdotL * shadow;
    }

    outColor = vec4(pow(color, vec3(1.0 / 2.2)), alpha);
}
` + "\x00"

const depthVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
uniform mat4 lightMVP;
` + displaceSrc + `
void main() {
    gl_Position = lightMVP * vec4(displace(inPosition, inNormal, inUV), 1.0);
}
` + "\x00"

// depth-only fragment shader (OpenGL writes depth implicitly)
const depthFragSrc = `
#version 410 core
void main() {}
` + "\x00"
